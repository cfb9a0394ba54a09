package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/dbus"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print removals as they happen",
	Long: `Print one line per removed notification until interrupted:

  <id> <reason>

The reason is one of expired, dismissed, dismissed-all or evicted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := dbus.Dial(logger)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	removals, err := c.WatchRemovals(ctx)
	if err != nil {
		return err
	}

	for r := range removals {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.ID, r.Reason); err != nil {
			return err
		}
	}
	return nil
}
