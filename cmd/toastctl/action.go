package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/dbus"
)

var errActionNotFired = errors.New("action did not run (already used, removed or none attached)")

var actionCmd = &cobra.Command{
	Use:   "action <index|id>",
	Short: "Run a notification's action",
	Long: `Run the action attached to a visible notification.

An action runs at most once and does not dismiss the notification.`,
	Args: cobra.ExactArgs(1),
	RunE: runAction,
}

func init() {
	rootCmd.AddCommand(actionCmd)
}

func runAction(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, c *dbus.Client) error {
		id, err := resolveRef(ctx, c, args[0])
		if err != nil {
			return err
		}
		fired, err := c.InvokeAction(ctx, id)
		if err != nil {
			return err
		}
		if !fired {
			return fmt.Errorf("%s: %w", id, errActionNotFired)
		}
		return nil
	})
}
