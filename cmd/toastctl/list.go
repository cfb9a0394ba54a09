package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/adapter/output"
	"github.com/jmylchreest/toastd/internal/core"
	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/model"
)

var listOpts struct {
	kind     string
	state    string
	since    string
	search   string
	limit    int
	format   string
	field    string
	template string
	bodyMax  int
}

var listCmd = &cobra.Command{
	Use:     "list [index|id]",
	Aliases: []string{"ls"},
	Short:   "List the visible notifications",
	Long: `List the visible notifications, oldest first.

With an index (1-based), an id or a unique id prefix, outputs only that
notification.

Examples:
  toastctl list
  toastctl list --format json
  toastctl list --kind error,warning
  toastctl list 2 --field title
  toastctl list --format dmenu | fuzzel -d | cut -d' ' -f1 | xargs toastctl action`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listOpts.kind, "kind", "",
		"Only show these kinds (comma-separated)")
	listCmd.Flags().StringVar(&listOpts.state, "state", "",
		"Only show this lifecycle state (entering, visible, exiting)")
	listCmd.Flags().StringVar(&listOpts.since, "since", "",
		"Only show notifications from the last duration (e.g. 30s, 5m)")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Search in title and body")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of notifications to show (0=unlimited)")
	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", string(output.FormatPlain),
		fmt.Sprintf("Output format %v", output.FormatTypes()))
	listCmd.Flags().StringVar(&listOpts.field, "field", "",
		"Output a single field of the selected notification")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Custom Go template for plain and dmenu output")
	listCmd.Flags().IntVar(&listOpts.bodyMax, "body-max", 0,
		"Truncate bodies to this many characters (0=unlimited)")
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormatType(listOpts.format)
	if err != nil {
		return err
	}

	var views []model.View
	err = withClient(func(ctx context.Context, c *dbus.Client) error {
		views, err = c.List(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if len(args) > 0 {
		v, err := core.Resolve(views, args[0])
		if err != nil {
			return err
		}
		if listOpts.field != "" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), output.FormatField(v, listOpts.field))
			return err
		}
		views = []model.View{*v}
	} else {
		views, err = applyListFilters(views)
		if err != nil {
			return err
		}
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.BodyMaxLen = listOpts.bodyMax
	return output.NewFormatter(format, opts).Format(cmd.OutOrStdout(), views)
}

func applyListFilters(views []model.View) ([]model.View, error) {
	opts := core.FilterOptions{
		State: listOpts.state,
		Limit: listOpts.limit,
	}

	if listOpts.kind != "" {
		kinds, err := core.ParseKinds(listOpts.kind)
		if err != nil {
			return nil, err
		}
		opts.Kinds = kinds
	}

	if listOpts.since != "" {
		d, err := core.ParseDuration(listOpts.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		opts.Since = d
	}

	if listOpts.search != "" {
		views = core.Search(views, listOpts.search)
	}
	return core.Filter(views, opts), nil
}
