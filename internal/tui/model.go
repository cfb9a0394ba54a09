// Package tui provides the BubbleTea-based terminal renderer for the stack.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/stack"
)

// Stack is the part of the stack manager the renderer drives.
type Stack interface {
	Snapshot() []model.View
	Dismiss(id string) bool
	DismissAll() int
	InvokeAction(id string) (bool, error)
	Subscribe() <-chan stack.ChangeEvent
	Unsubscribe(ch <-chan stack.ChangeEvent)
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeStack Mode = iota
	ModeHelp
)

// Model is the main TUI model.
type Model struct {
	stack         Stack
	rowsPerOffset int
	now           func() time.Time

	mode Mode
	help help.Model
	keys KeyMap

	views    []model.View
	selected int
	width    int
	height   int

	statusMsg string
	statusErr bool

	changes <-chan stack.ChangeEvent
}

// New creates a new TUI model subscribed to s.
func New(s Stack, rowsPerOffset int) Model {
	return Model{
		stack:         s,
		rowsPerOffset: rowsPerOffset,
		now:           time.Now,
		mode:          ModeStack,
		help:          help.New(),
		keys:          DefaultKeyMap(),
		changes:       s.Subscribe(),
	}
}

type refreshMsg struct{}

type tickMsg time.Time

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Init initializes the TUI. The first refresh starts the change watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return refreshMsg{} },
		tick(),
	)
}

// watchForChanges blocks until the stack changes.
func (m Model) watchForChanges() tea.Msg {
	if m.changes == nil {
		return nil
	}
	if _, ok := <-m.changes; !ok {
		return nil
	}
	return refreshMsg{}
}

// tick refreshes ages once per second.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, m.watchForChanges

	case tickMsg:
		return m, tick()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// refresh re-reads the snapshot and keeps the selection in range.
func (m *Model) refresh() {
	m.views = m.stack.Snapshot()
	if m.selected >= len(m.views) {
		m.selected = len(m.views) - 1
	}
	if m.selected < 0 && len(m.views) > 0 {
		m.selected = 0
	}
}

// current returns the selected record, if any.
func (m Model) current() (model.View, bool) {
	if m.selected < 0 || m.selected >= len(m.views) {
		return model.View{}, false
	}
	return m.views[m.selected], true
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stack.Unsubscribe(m.changes)
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeStack
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	if m.mode == ModeHelp {
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeStack
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.views)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Dismiss):
		if v, ok := m.current(); ok {
			m.stack.Dismiss(v.ID)
			m.refresh()
		}
	case key.Matches(msg, m.keys.DismissAll):
		n := m.stack.DismissAll()
		m.refresh()
		return m, status(fmt.Sprintf("Dismissed %d", n), false)
	case key.Matches(msg, m.keys.Action):
		v, ok := m.current()
		if !ok || v.ActionLabel == "" {
			return m, nil
		}
		fired, err := m.stack.InvokeAction(v.ID)
		if err != nil {
			return m, status("Action failed: "+err.Error(), true)
		}
		if !fired {
			return m, status("Action already used", true)
		}
		return m, status(v.ActionLabel, false)
	}
	return m, nil
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.mode == ModeHelp {
		return m.viewHelp()
	}

	s := Render(m.views, RenderOptions{
		Width:         m.width,
		RowsPerOffset: m.rowsPerOffset,
		Selected:      m.selected,
		Now:           m.now(),
	})

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return s + "\n\n" + statusStyle.Render(m.statusMsg)
	}
	return s + "\n\n" + m.help.View(m.keys)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	h := m.help
	h.ShowAll = true

	return titleStyle.Render("Keyboard Shortcuts") + "\n\n" + h.View(m.keys) + "\n\n" +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
}

// Run renders s in the terminal until the user quits or ctx is done.
func Run(ctx context.Context, s Stack, rowsPerOffset int) error {
	p := tea.NewProgram(New(s, rowsPerOffset), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
