package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/adapter/output"
	"github.com/jmylchreest/toastd/internal/core"
	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/model"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output the visible stack in Waybar's custom module JSON format.

  "custom/toasts": {
    "exec": "toastctl status",
    "interval": 2,
    "return-type": "json",
    "on-click": "toastctl dismiss-all"
  }

The class is the most severe visible kind (error, warning, booking,
success, info) or "empty". When toastd is unreachable the class is "error".`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	var views []model.View
	err := withClient(func(ctx context.Context, c *dbus.Client) error {
		var err error
		views, err = c.List(ctx)
		return err
	})

	status := WaybarStatus{Alt: "error", Class: "error", Tooltip: "toastd is not running"}
	if err == nil {
		status = generateStatus(views)
	} else {
		logger.Debug("status unavailable", "error", err)
	}

	return output.NewJSONFormatter(output.FormatterOptions{Compact: true}).
		FormatValue(cmd.OutOrStdout(), status)
}

// severityOrder lists kinds from most to least severe.
var severityOrder = []model.Kind{
	model.KindError,
	model.KindWarning,
	model.KindBooking,
	model.KindSuccess,
	model.KindInfo,
}

// generateStatus summarizes a snapshot.
func generateStatus(views []model.View) WaybarStatus {
	if len(views) == 0 {
		return WaybarStatus{Alt: "empty", Class: "empty", Tooltip: "No notifications"}
	}

	counts := core.CountByKind(views)
	class := ""
	var lines []string
	for _, kind := range severityOrder {
		n := counts[kind]
		if n == 0 {
			continue
		}
		if class == "" {
			class = string(kind)
		}
		lines = append(lines, fmt.Sprintf("%s: %d", kind, n))
	}

	return WaybarStatus{
		Text:    fmt.Sprintf("%d", len(views)),
		Alt:     class,
		Tooltip: fmt.Sprintf("%d visible\n%s", len(views), strings.Join(lines, "\n")),
		Class:   class,
	}
}
