// Package main provides the command-line client for toastd.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/dbus"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	globalOpts struct {
		verbose bool
		timeout time.Duration
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "toastctl",
	Short: "Control the toastd notification stack",
	Long: `toastctl talks to a running toastd over the session bus.

It can raise notifications, list the visible stack, dismiss notifications
and run their actions.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "toastctl:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&globalOpts.timeout, "timeout", 5*time.Second,
		"Timeout for calls to toastd")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// withClient dials toastd and runs fn with a call timeout.
func withClient(fn func(ctx context.Context, c *dbus.Client) error) error {
	c, err := dbus.Dial(logger)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), globalOpts.timeout)
	defer cancel()
	return fn(ctx, c)
}
