// Package confirm provides the yes/no prompt model.
package confirm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/styles"
)

// Model asks a single yes/no question. Enter takes the default answer.
type Model struct {
	question   string
	defaultYes bool
	keys       *keymap.KeyMap
	styles     *styles.Styles
	answer     bool
	answered   bool
	cancelled  bool
}

// New creates a confirmation prompt.
func New(question string, defaultYes bool) *Model {
	return &Model{
		question:   question,
		defaultYes: defaultYes,
		keys:       keymap.DefaultKeyMap(),
		styles:     styles.DefaultStyles(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.answer, m.answered = true, true
	case key.Matches(keyMsg, m.keys.No):
		m.answer, m.answered = false, true
	case key.Matches(keyMsg, m.keys.Select):
		m.answer, m.answered = m.defaultYes, true
	case key.Matches(keyMsg, m.keys.Quit):
		m.cancelled = true
	default:
		return m, nil
	}
	return m, tea.Quit
}

// View implements tea.Model.
func (m *Model) View() string {
	choices := "[y/N]"
	if m.defaultYes {
		choices = "[Y/n]"
	}
	if m.answered {
		answer := m.styles.Error.Render("no")
		if m.answer {
			answer = m.styles.Success.Render("yes")
		}
		return m.styles.Normal.Render(m.question) + " " + answer + "\n"
	}
	if m.cancelled {
		return ""
	}
	return m.styles.Normal.Render(m.question) + " " + m.styles.Muted.Render(choices) + "\n" +
		status.RenderHints(m.styles, m.keys.ConfirmHelp()) + "\n"
}

// Answer returns the answer and whether one was given.
func (m *Model) Answer() (yes, answered bool) {
	return m.answer, m.answered
}

// Cancelled reports whether the user abandoned the prompt.
func (m *Model) Cancelled() bool {
	return m.cancelled
}
