// Package main is the entry point for the toastd notification daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/daemon"
	"github.com/jmylchreest/toastd/internal/tui"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/toastd/toastd.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	withTUI := flag.Bool("tui", false, "Render the stack in the terminal (overrides tui.enabled)")
	logFile := flag.String("log-file", "", "Write logs to this file instead of stderr")
	announce := flag.Bool("announce", false, "Raise a toast once the daemon is running")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("toastd version", version)
		os.Exit(0)
	}

	path := *configPath
	if path == "" {
		var err error
		if path, err = config.DaemonConfigPath(); err != nil {
			fmt.Fprintln(os.Stderr, "toastd:", err)
			os.Exit(1)
		}
	}

	cfg, err := config.LoadDaemonConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "toastd: failed to load config:", err)
		os.Exit(1)
	}
	runTUI := *withTUI || cfg.TUI.Enabled

	logger, closeLog, err := setupLogger(*verbose, *logFile, runTUI)
	if err != nil {
		fmt.Fprintln(os.Stderr, "toastd:", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := daemon.New(cfg, daemon.Options{
		ConfigPath:    path,
		Version:       version,
		NotifyStartup: *announce,
		Logger:        logger,
	})

	if !runTUI {
		if err := d.Run(ctx); err != nil {
			logger.Error("daemon failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}
	defer d.Stop()

	if err := tui.Run(ctx, d.Stack(), d.Config().TUI.RowsPerOffset); err != nil {
		logger.Error("terminal renderer failed", "error", err)
	}
}

// setupLogger builds the process logger. The terminal renderer owns the
// screen, so logs without a file are discarded while it runs.
func setupLogger(verbose bool, path string, quiet bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case quiet:
		w = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}
