// Package config handles the global ws configuration file and its
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "ws"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	// EnvServiceURL overrides service_url.
	EnvServiceURL = "WS_SERVICE_URL"
	// EnvAPIToken overrides api_token.
	EnvAPIToken = "WS_API_TOKEN"
)

// Defaults applied to unset fields.
const (
	DefaultServiceURL   = "http://localhost:8000"
	DefaultPDFReader    = "system"
	DefaultCanvasWidth  = 1200
	DefaultCanvasHeight = 800
	DefaultRateLimit    = 2.0
	DefaultTimeout      = 2 * time.Minute
)

// ErrUnknownKey is returned by Get and Set for keys the file does not have.
var ErrUnknownKey = errors.New("unknown config key")

// Config is the content of $XDG_CONFIG_HOME/ws/config.yml.
type Config struct {
	ServiceURL   string        `yaml:"service_url,omitempty" validate:"omitempty,url"`
	APIToken     string        `yaml:"api_token,omitempty"`
	PDFReader    string        `yaml:"pdf_reader,omitempty" validate:"omitempty,oneof=system preview skim zathura evince okular"`
	CanvasWidth  int           `yaml:"canvas_width,omitempty" validate:"omitempty,min=1,max=16384"`
	CanvasHeight int           `yaml:"canvas_height,omitempty" validate:"omitempty,min=1,max=16384"`
	RateLimit    float64       `yaml:"rate_limit,omitempty" validate:"omitempty,gt=0"`
	Timeout      time.Duration `yaml:"timeout,omitempty" validate:"omitempty,min=1s"`
}

var validate = validator.New()

// cache holds the loaded config.
var cache *Config

// Path returns the config file path. Respects XDG_CONFIG_HOME, defaulting to
// ~/.config/ws/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file, applies environment overrides and defaults,
// and validates the result. A missing file is not an error.
func Load() (*Config, error) {
	if cache != nil {
		return cache, nil
	}
	cfg, err := ReadFile(Path())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cache = cfg
	return cfg, nil
}

// ResetCache clears the cached config. Useful for testing.
func ResetCache() {
	cache = nil
}

// ReadFile reads a config file as written, without overrides or defaults.
func ReadFile(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	ResetCache()
	return nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvServiceURL); v != "" {
		c.ServiceURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.APIToken = v
	}
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	if c.PDFReader == "" {
		c.PDFReader = DefaultPDFReader
	}
	if c.CanvasWidth == 0 {
		c.CanvasWidth = DefaultCanvasWidth
	}
	if c.CanvasHeight == 0 {
		c.CanvasHeight = DefaultCanvasHeight
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks field formats and ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

var fields = map[string]field{
	"service_url": {
		get: func(c *Config) string { return c.ServiceURL },
		set: func(c *Config, v string) error { c.ServiceURL = v; return nil },
	},
	"api_token": {
		get: func(c *Config) string { return c.APIToken },
		set: func(c *Config, v string) error { c.APIToken = v; return nil },
	},
	"pdf_reader": {
		get: func(c *Config) string { return c.PDFReader },
		set: func(c *Config, v string) error { c.PDFReader = v; return nil },
	},
	"canvas_width": {
		get: func(c *Config) string { return intString(c.CanvasWidth) },
		set: func(c *Config, v string) (err error) { c.CanvasWidth, err = strconv.Atoi(v); return err },
	},
	"canvas_height": {
		get: func(c *Config) string { return intString(c.CanvasHeight) },
		set: func(c *Config, v string) (err error) { c.CanvasHeight, err = strconv.Atoi(v); return err },
	},
	"rate_limit": {
		get: func(c *Config) string {
			if c.RateLimit == 0 {
				return ""
			}
			return strconv.FormatFloat(c.RateLimit, 'g', -1, 64)
		},
		set: func(c *Config, v string) (err error) { c.RateLimit, err = strconv.ParseFloat(v, 64); return err },
	},
	"timeout": {
		get: func(c *Config) string {
			if c.Timeout == 0 {
				return ""
			}
			return c.Timeout.String()
		},
		set: func(c *Config, v string) (err error) { c.Timeout, err = time.ParseDuration(v); return err },
	},
}

func intString(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// Get returns the value of key.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

// Set parses value into key.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := f.set(c, value); err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	return nil
}
