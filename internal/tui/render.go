package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastd/internal/model"
)

// RenderOptions controls how a snapshot is laid out.
type RenderOptions struct {
	Width         int
	RowsPerOffset int       // Layout offset units per terminal row
	Selected      int       // Index of the highlighted record, -1 for none
	Now           time.Time // Reference time for ages
}

// kindColors maps each kind to its border color.
var kindColors = map[model.Kind]lipgloss.Color{
	model.KindSuccess: lipgloss.Color("10"),
	model.KindInfo:    lipgloss.Color("12"),
	model.KindWarning: lipgloss.Color("11"),
	model.KindError:   lipgloss.Color("9"),
	model.KindBooking: lipgloss.Color("13"),
}

const (
	minBoxWidth = 24
	maxBoxWidth = 60
	bodyMaxLen  = 80
)

// Render draws the snapshot as a column of boxes, each starting at the row
// derived from its layout offset. Output depends only on views and opts.
func Render(views []model.View, opts RenderOptions) string {
	if len(views) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("No notifications")
	}

	rowsPerOffset := opts.RowsPerOffset
	if rowsPerOffset < 1 {
		rowsPerOffset = 1
	}

	var canvas []string
	for i, v := range views {
		box := renderBox(v, i == opts.Selected, boxWidth(opts.Width), opts.Now)
		row := v.LayoutOffset / rowsPerOffset
		for j, line := range strings.Split(box, "\n") {
			for len(canvas) <= row+j {
				canvas = append(canvas, "")
			}
			canvas[row+j] = line
		}
	}
	return strings.Join(canvas, "\n")
}

func boxWidth(termWidth int) int {
	w := termWidth - 2
	if w > maxBoxWidth {
		w = maxBoxWidth
	}
	if w < minBoxWidth {
		w = minBoxWidth
	}
	return w
}

// renderBox renders one record: title line, optional body and a meta line.
func renderBox(v model.View, selected bool, width int, now time.Time) string {
	color, ok := kindColors[v.Kind]
	if !ok {
		color = kindColors[model.KindInfo]
	}

	border := lipgloss.NormalBorder()
	if selected {
		border = lipgloss.ThickBorder()
	}
	style := lipgloss.NewStyle().
		Border(border).
		BorderForeground(color).
		Padding(0, 1).
		Width(width)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	title := v.Title
	if v.CountdownLabel != "" {
		title += "  " + v.CountdownLabel
	}

	lines := []string{titleStyle.Render(title)}
	if v.Body != "" {
		lines = append(lines, v.BodyTruncated(bodyMaxLen))
	}

	meta := fmt.Sprintf("%s · %s · %s", v.Kind, v.State, age(v.CreatedAt, now))
	if v.ActionLabel != "" {
		meta += " · [" + v.ActionLabel + "]"
	}
	lines = append(lines, metaStyle.Render(meta))

	return style.Render(strings.Join(lines, "\n"))
}

// age returns a humanized age of t relative to now.
func age(t, now time.Time) string {
	if t.IsZero() {
		return "just now"
	}
	if now.Sub(t) < time.Second {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
