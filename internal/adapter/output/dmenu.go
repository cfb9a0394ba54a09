package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

// DmenuFormatter formats a snapshot for dmenu/rofi/fuzzel pickers.
// The leading index can be passed back to toastctl as a reference.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes one line per notification.
func (f *DmenuFormatter) Format(w io.Writer, views []model.View) error {
	now := f.opts.now()
	for i := range views {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, &views[i], now)); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single line: index | age | kind | title: body
func (f *DmenuFormatter) formatLine(index int, v *model.View, now time.Time) string {
	if f.template != nil {
		var buf strings.Builder
		data := templateData{
			Index:        index,
			View:         v,
			RelativeTime: relativeTime(v.CreatedAt, now),
		}
		if err := f.template.Execute(&buf, data); err == nil {
			return buf.String()
		}
	}

	var parts []string
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}
	if f.opts.ShowTime {
		parts = append(parts, relativeTime(v.CreatedAt, now))
	}
	if f.opts.ShowKind {
		parts = append(parts, string(v.Kind))
	}

	content := v.Title
	if v.Body != "" {
		if body := sanitizeBody(v.Body, f.opts.BodyMaxLen); body != "" {
			content += ": " + body
		}
	}
	parts = append(parts, content)

	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Index        int
	View         *model.View
	RelativeTime string
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			if maxLen <= 0 || len(s) <= maxLen {
				return s
			}
			if maxLen <= 3 {
				return s[:maxLen]
			}
			return s[:maxLen-3] + "..."
		},
		"kindIcon": func(kind model.Kind) string {
			switch kind {
			case model.KindSuccess:
				return "✓"
			case model.KindWarning:
				return "!"
			case model.KindError:
				return "✗"
			case model.KindBooking:
				return "@"
			default:
				return "i"
			}
		},
	}
}
