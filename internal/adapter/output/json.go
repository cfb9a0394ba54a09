package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/toastd/internal/model"
)

// JSONFormatter formats a snapshot as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes the snapshot as a JSON array. An empty stack is "[]".
func (f *JSONFormatter) Format(w io.Writer, views []model.View) error {
	if views == nil {
		views = []model.View{}
	}
	encoder := json.NewEncoder(w)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(views)
}

// FormatValue writes any value as JSON, used for status output.
func (f *JSONFormatter) FormatValue(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
