package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastd/internal/model"
)

// YAMLFormatter formats a snapshot as a YAML sequence.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes the snapshot as YAML.
func (f *YAMLFormatter) Format(w io.Writer, views []model.View) error {
	if views == nil {
		views = []model.View{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(views); err != nil {
		return err
	}
	return encoder.Close()
}
