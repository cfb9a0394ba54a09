package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastd/internal/model"
)

var refTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func testViews() []model.View {
	return []model.View{
		{
			ID:           "01J0000000000000000000000A",
			Kind:         model.KindSuccess,
			Title:        "Profile saved",
			Body:         "Your changes\nare live",
			LayoutOffset: 0,
			State:        "visible",
			DurationMs:   5000,
			CreatedAt:    refTime.Add(-5 * time.Second),
		},
		{
			ID:             "01J0000000000000000000000B",
			Kind:           model.KindBooking,
			Title:          "Table booked",
			CountdownLabel: "in 2 days",
			ActionLabel:    "View booking",
			LayoutOffset:   100,
			State:          "entering",
			DurationMs:     8000,
			CreatedAt:      refTime.Add(-3 * time.Minute),
		},
	}
}

func testOptions() FormatterOptions {
	opts := DefaultFormatterOptions()
	opts.Now = func() time.Time { return refTime }
	return opts
}

func TestParseFormatType(t *testing.T) {
	tests := []struct {
		input   string
		want    FormatType
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"plain", FormatPlain, false},
		{"ids", FormatIDs, false},
		{"dmenu", FormatDmenu, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormatType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, testOptions()))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML, testOptions()))
	assert.IsType(t, &IDsFormatter{}, NewFormatter(FormatIDs, testOptions()))
	assert.IsType(t, &DmenuFormatter{}, NewFormatter(FormatDmenu, testOptions()))
	assert.IsType(t, &PlainFormatter{}, NewFormatter(FormatPlain, testOptions()))
	assert.IsType(t, &PlainFormatter{}, NewFormatter("other", testOptions()))
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(testOptions()).Format(&buf, testViews()))

	out := buf.String()
	assert.Contains(t, out, "[1] <success> Profile saved (5 seconds ago, visible)\n")
	assert.Contains(t, out, "    Your changes are live\n")
	assert.Contains(t, out, "[2] <booking> Table booked - in 2 days (3 minutes ago, entering)\n")
	assert.Contains(t, out, "    action: View booking\n")
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Index}} {{kindIcon .View.Kind}} {{truncate .View.Title 8}} {{.RelativeTime}}"

	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testViews()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 ✓ Profi... 5 seconds ago", lines[0])
	assert.Equal(t, "2 @ Table... 3 minutes ago", lines[1])
}

func TestDmenuFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDmenuFormatter(testOptions()).Format(&buf, testViews()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 | 5 seconds ago | success | Profile saved: Your changes are live", lines[0])
	assert.Equal(t, "2 | 3 minutes ago | booking | Table booked", lines[1])
}

func TestDmenuFormatter_NoIndex(t *testing.T) {
	opts := testOptions()
	opts.ShowIndex = false
	opts.ShowTime = false

	var buf bytes.Buffer
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testViews()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "success | Profile saved: Your changes are live", lines[0])
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(testOptions()).Format(&buf, testViews()))

	var decoded []model.View
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Table booked", decoded[1].Title)
	assert.Equal(t, 100, decoded[1].LayoutOffset)
	assert.Equal(t, "View booking", decoded[1].ActionLabel)
}

func TestJSONFormatter_Empty(t *testing.T) {
	opts := testOptions()
	opts.Compact = true

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(opts).Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, testViews()))

	out := buf.String()
	assert.Contains(t, out, "- id: 01J0000000000000000000000A")
	assert.Contains(t, out, "layout_offset: 100")
	assert.Contains(t, out, "countdown_label: in 2 days")

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "booking", decoded[1]["kind"])
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testViews()))
	assert.Equal(t, "01J0000000000000000000000A\n01J0000000000000000000000B\n", buf.String())
}

func TestFormatField(t *testing.T) {
	v := testViews()[1]

	tests := []struct {
		field string
		want  string
	}{
		{"id", "01J0000000000000000000000B"},
		{"kind", "booking"},
		{"title", "Table booked"},
		{"countdown", "in 2 days"},
		{"action", "View booking"},
		{"offset", "100"},
		{"state", "entering"},
		{"unknown", "Table booked"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatField(&v, tt.field))
		})
	}
}

func TestSanitizeBody(t *testing.T) {
	assert.Equal(t, "a b c", sanitizeBody("a\r\n  b\n\nc ", 0))
	assert.Equal(t, "abcd...", sanitizeBody("abcdefghij", 7))
	assert.Equal(t, "ab", sanitizeBody("abcdef", 2))

	accented := "Reserva confirmada: café ☕ às 10h"
	for n := 1; n <= utf8.RuneCountInString(accented)+2; n++ {
		got := sanitizeBody(accented, n)
		assert.True(t, utf8.ValidString(got), "maxLen %d gave %q", n, got)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), n)
	}
	assert.Equal(t, "Reserva confirmada: café...", sanitizeBody(accented, 27))
}

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "unknown", relativeTime(time.Time{}, refTime))
	assert.Equal(t, "now", relativeTime(refTime, refTime))
	assert.Equal(t, "1 hour ago", relativeTime(refTime.Add(-time.Hour), refTime))
}
