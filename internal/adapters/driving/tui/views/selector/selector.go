// Package selector provides the single and multi choice prompt model.
package selector

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/styles"
)

// Model is a bubbletea model asking the user to pick one or more options.
type Model struct {
	title     string
	list      *list.SelectList
	keys      *keymap.KeyMap
	styles    *styles.Styles
	warning   string
	chosen    []int
	done      bool
	cancelled bool
}

// New creates a selector. Multi-select models start with every option
// checked when checkAll is set.
func New(title string, options []list.Option, multi, checkAll bool) *Model {
	s := styles.DefaultStyles()
	return &Model{
		title:  title,
		list:   list.NewSelectList(s, options, multi, checkAll),
		keys:   keymap.DefaultKeyMap(),
		styles: s,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetHeight(msg.Height - 6)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.warning = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.list.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.list.MoveDown()
	case m.list.IsMulti() && key.Matches(msg, m.keys.Toggle):
		m.list.Toggle()
	case m.list.IsMulti() && key.Matches(msg, m.keys.All):
		m.list.ToggleAll()
	case key.Matches(msg, m.keys.Select):
		if m.list.Count() == 0 {
			return m, nil
		}
		if !m.list.IsMulti() {
			m.chosen = []int{m.list.Cursor()}
		} else {
			m.chosen = m.list.Checked()
			if len(m.chosen) == 0 {
				m.warning = "Select at least one option"
				return m, nil
			}
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.list.View())
	b.WriteString("\n\n")
	if m.warning != "" {
		b.WriteString(m.styles.Warning.Render(m.warning))
		b.WriteString("\n")
	}
	hints := m.keys.ShortHelp()
	if m.list.IsMulti() {
		hints = m.keys.MultiHelp()
	}
	b.WriteString(status.RenderHints(m.styles, hints))
	b.WriteString("\n")
	return b.String()
}

// Chosen returns the chosen indices in option order.
func (m *Model) Chosen() []int {
	return m.chosen
}

// Cancelled reports whether the user abandoned the prompt.
func (m *Model) Cancelled() bool {
	return m.cancelled
}
