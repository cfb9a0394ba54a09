package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/core"
	"github.com/jmylchreest/toastd/internal/dbus"
)

var dismissCmd = &cobra.Command{
	Use:   "dismiss <index|id>",
	Short: "Dismiss a visible notification",
	Long: `Dismiss a notification by 1-based index, id or unique id prefix.

Dismissing a notification that is already gone is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runDismiss,
}

var dismissAllCmd = &cobra.Command{
	Use:   "dismiss-all",
	Short: "Dismiss every visible notification",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *dbus.Client) error {
			return c.DismissAll(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(dismissAllCmd)
}

func runDismiss(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, c *dbus.Client) error {
		id, err := resolveRef(ctx, c, args[0])
		if err != nil {
			return err
		}
		logger.Debug("dismissing notification", "id", id)
		return c.Dismiss(ctx, id)
	})
}

// resolveRef maps an index, id or prefix to an id in the current snapshot.
func resolveRef(ctx context.Context, c *dbus.Client, ref string) (string, error) {
	views, err := c.List(ctx)
	if err != nil {
		return "", err
	}
	v, err := core.Resolve(views, ref)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ref, err)
	}
	return v.ID, nil
}
