// Package output provides output formatters for stack snapshots.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastd/internal/model"
)

// Formatter formats a snapshot for output.
type Formatter interface {
	// Format writes formatted notifications to the writer.
	Format(w io.Writer, views []model.View) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
	FormatIDs   FormatType = "ids"
)

// FormatTypes lists the accepted format names.
func FormatTypes() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatIDs, FormatDmenu}
}

// ParseFormatType resolves a format name.
func ParseFormatType(s string) (FormatType, error) {
	for _, f := range FormatTypes() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter()
	case FormatIDs:
		return NewIDsFormatter()
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string           // Custom template for dmenu/plain format
	ShowIndex  bool             // Show 1-based index prefix
	ShowTime   bool             // Show relative age
	ShowKind   bool             // Show kind
	BodyMaxLen int              // Maximum body length (0 = unlimited)
	Separator  string           // Field separator for dmenu format
	Compact    bool             // Single-line JSON
	Now        func() time.Time // Reference time for ages; nil = time.Now
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowTime:   true,
		ShowKind:   true,
		BodyMaxLen: 80,
		Separator:  " | ",
	}
}

func (o FormatterOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// relativeTime returns a humanized age such as "3 seconds ago".
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	if now.Sub(t) < time.Second {
		return "now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// sanitizeBody cleans up body text for single-line display.
func sanitizeBody(body string, maxLen int) string {
	body = strings.ReplaceAll(body, "\r", "")
	body = strings.Join(strings.Fields(body), " ")

	if maxLen > 0 {
		return model.Truncate(body, maxLen)
	}
	return body
}
