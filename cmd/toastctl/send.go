package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/model"
)

var sendOpts struct {
	kind      string
	body      string
	countdown string
	media     string
	action    string
	duration  time.Duration
}

var sendCmd = &cobra.Command{
	Use:   "send <title>",
	Short: "Raise a notification",
	Long: `Raise a notification on the stack and print its id.

Examples:
  toastctl send "Profile saved" --kind success
  toastctl send "Table booked" --kind booking --countdown "in 2 days" --action "View booking"
  toastctl send "Upload failed" --kind error --body "disk full" --duration 10s`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.kind, "kind", "k", string(model.KindInfo),
		fmt.Sprintf("Notification kind %v", model.Kinds()))
	sendCmd.Flags().StringVarP(&sendOpts.body, "body", "b", "",
		"Body text")
	sendCmd.Flags().StringVar(&sendOpts.countdown, "countdown", "",
		"Countdown label (e.g. \"in 2 days\")")
	sendCmd.Flags().StringVar(&sendOpts.media, "media", "",
		"Media reference shown with the notification")
	sendCmd.Flags().StringVarP(&sendOpts.action, "action", "a", "",
		"Action label; the daemon emits ActionInvoked when it runs")
	sendCmd.Flags().DurationVarP(&sendOpts.duration, "duration", "d", 0,
		"Visible duration (0 = daemon default)")
}

func runSend(cmd *cobra.Command, args []string) error {
	if _, err := model.ParseKind(sendOpts.kind); err != nil {
		return err
	}

	req := dbus.EnqueueArgs{
		Kind:           sendOpts.kind,
		Title:          args[0],
		Body:           sendOpts.body,
		CountdownLabel: sendOpts.countdown,
		MediaRef:       sendOpts.media,
		ActionLabel:    sendOpts.action,
		DurationMs:     int32(sendOpts.duration.Milliseconds()),
	}

	return withClient(func(ctx context.Context, c *dbus.Client) error {
		id, err := c.Enqueue(ctx, req)
		if err != nil {
			return err
		}
		logger.Debug("notification enqueued", "id", id, "kind", req.Kind)
		_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
		return err
	})
}
