// Package progress provides the spinner model shown while an extraction runs.
package progress

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/styles"
)

// Model renders a spinner next to a status line until it receives messages.Done.
type Model struct {
	spinner  spinner.Model
	bar      *status.Bar
	quitting bool
}

// New creates a progress model with an initial message.
func New(message string) *Model {
	s := styles.DefaultStyles()
	bar := status.NewBar(s)
	bar.SetMessage(message)
	return &Model{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(s.Cursor),
		),
		bar: bar,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.Status:
		m.bar.SetMessage(msg.Message)
		m.bar.SetStep(msg.Step, msg.Total)
		return m, nil
	case messages.StepFailed:
		m.bar.AddFailure()
		return m, nil
	case messages.Done:
		m.quitting = true
		m.bar.SetState(status.StateDone)
		if msg.Err != nil {
			m.bar.SetState(status.StateFailed)
		}
		m.bar.SetStep(0, 0)
		m.bar.SetMessage(msg.Message)
		return m, tea.Quit
	case spinner.TickMsg:
		if m.quitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	return m.bar.View(m.spinner.View()) + "\n"
}

// Failures returns the number of failed steps reported so far.
func (m *Model) Failures() int {
	return m.bar.Failures()
}

// Finished reports whether Done was received.
func (m *Model) Finished() bool {
	return m.quitting
}
