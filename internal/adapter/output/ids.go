package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/toastd/internal/model"
)

// IDsFormatter outputs just the notification ids, one per line.
// Useful for piping to other commands (e.g., xargs toastctl dismiss).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes ids to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, views []model.View) error {
	for _, v := range views {
		if _, err := fmt.Fprintln(w, v.ID); err != nil {
			return err
		}
	}
	return nil
}
