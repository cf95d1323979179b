package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/whitespace/internal/config"
)

// redacted replaces the token in config listings.
const redacted = "********"

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, get or set configuration values",
	Long: `Show, get or set values in $XDG_CONFIG_HOME/ws/config.yml.

WS_SERVICE_URL and WS_API_TOKEN (also read from .env) override the file.

Keys:
  service_url    Whitespace service base URL
  api_token      Bearer token for the service
  pdf_reader     PDF reader (system, preview, skim, zathura, evince, okular)
  canvas_width   Default canvas width in pixels
  canvas_height  Default canvas height in pixels
  rate_limit     Service requests per second
  timeout        Service request timeout (e.g. 2m)

Usage:
  ws config                         # Show effective config
  ws config get pdf_reader
  ws config set pdf_reader zathura`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one effective configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write one value to the config file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	values := make(map[string]string)
	for _, key := range config.Keys() {
		v, _ := cfg.Get(key)
		if key == "api_token" && v != "" {
			v = redacted
		}
		values[key] = v
	}
	if humanOutput {
		for _, key := range config.Keys() {
			fmt.Printf("%-14s %s\n", key+":", values[key])
		}
		return nil
	}
	return outputJSON(values)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	key := normalizeKey(args[0])
	v, err := cfg.Get(key)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if humanOutput {
		fmt.Println(v)
		return nil
	}
	return outputJSON(map[string]string{key: v})
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := normalizeKey(args[0]), args[1]
	path := config.Path()
	if path == "" {
		exitWithError(ExitConfigError, "cannot determine config path")
	}

	// The file is edited as written, so env overrides never leak into it.
	cfg, err := config.ReadFile(path)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Set(key, value); err != nil {
		code := ExitError
		if !errors.Is(err, config.ErrUnknownKey) {
			code = ExitConfigError
		}
		exitWithError(code, "%v", err)
	}
	if err := config.Save(path, cfg); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
		return nil
	}
	return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
}

// normalizeKey converts key formats (pdf-reader, PDF_READER) to pdf_reader.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}
