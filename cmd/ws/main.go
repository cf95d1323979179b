// Package main provides the ws CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/whitespace/internal/config"
	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/session"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra usage errors are printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ws",
	Short: "Whitespace graph rendering and evidence export",
	Long: `ws renders whitespace similarity graphs and exports signal evidence.

Core features:
  - Run analyses against the whitespace service
  - Lay out, fit and reduce a graph payload into a drawable frame
  - Rank example filings for an assignee signal
  - Write self-contained PDF evidence reports

All commands output JSON by default for agent integration.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug detail to stderr")
	rootCmd.Version = Version
}

// setup loads .env and installs the stderr logger.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// sessionOptions sizes the canvas from flags, falling back to the config.
func sessionOptions(cfg *config.Config, width, height int) session.Options {
	if width <= 0 {
		width = cfg.CanvasWidth
	}
	if height <= 0 {
		height = cfg.CanvasHeight
	}
	opts := session.DefaultOptions(float64(width), float64(height))
	opts.Logger = slog.Default()
	return opts
}

// mustLoadSession reads a payload file and builds a session for it.
func mustLoadSession(ctx context.Context, path string, opts session.Options) (*session.Manager, *session.Session) {
	p, err := graph.Load(path)
	if err != nil {
		exitWithError(ExitDataError, "loading payload: %v", err)
	}
	m := session.NewManager(opts)
	return m, m.Replace(ctx, p)
}
