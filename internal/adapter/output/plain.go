package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

// PlainFormatter formats a snapshot as human-readable text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes one entry per notification.
func (f *PlainFormatter) Format(w io.Writer, views []model.View) error {
	now := f.opts.now()
	for i := range views {
		if err := f.formatView(w, i+1, &views[i], now); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatView(w io.Writer, index int, v *model.View, now time.Time) error {
	if f.template != nil {
		data := templateData{
			Index:        index,
			View:         v,
			RelativeTime: relativeTime(v.CreatedAt, now),
		}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	if f.opts.ShowKind {
		fmt.Fprintf(&sb, "<%s> ", v.Kind)
	}

	sb.WriteString(v.Title)
	if v.CountdownLabel != "" {
		sb.WriteString(" - " + v.CountdownLabel)
	}

	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " (%s, %s)", relativeTime(v.CreatedAt, now), v.State)
	}
	sb.WriteString("\n")

	if v.Body != "" {
		sb.WriteString("    " + sanitizeBody(v.Body, f.opts.BodyMaxLen) + "\n")
	}
	if v.ActionLabel != "" {
		sb.WriteString("    action: " + v.ActionLabel + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatField outputs a specific field of a notification.
func FormatField(v *model.View, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return v.ID
	case "kind":
		return string(v.Kind)
	case "title":
		return v.Title
	case "body":
		return v.Body
	case "countdown", "countdown_label":
		return v.CountdownLabel
	case "media", "media_ref":
		return v.MediaRef
	case "action", "action_label":
		return v.ActionLabel
	case "offset", "layout_offset":
		return fmt.Sprintf("%d", v.LayoutOffset)
	case "state":
		return v.State
	case "all", "full":
		return fmt.Sprintf("%s\n%s", v.Title, v.Body)
	default:
		return v.Title
	}
}
