// Package status provides the run status line and key hint rendering.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/styles"
)

// State represents the state of a running extraction.
type State string

const (
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Bar renders a one-line status: indicator, step counter and message.
type Bar struct {
	styles  *styles.Styles
	state   State
	message string
	step    int
	total   int
	failed  int
}

// NewBar creates a new status bar.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Bar{styles: s, state: StateRunning}
}

// View renders the bar. indicator is drawn while running, typically a
// spinner frame.
func (b *Bar) View(indicator string) string {
	var lead string
	switch b.state {
	case StateDone:
		lead = b.styles.Success.Render("✓")
	case StateFailed:
		lead = b.styles.Error.Render("✗")
	default:
		lead = indicator
	}

	parts := []string{lead}
	if b.total > 0 {
		parts = append(parts, b.styles.Muted.Render(fmt.Sprintf("[%d/%d]", b.step, b.total)))
	}
	if b.message != "" {
		msg := b.styles.Normal.Render(b.message)
		if b.state == StateFailed {
			msg = b.styles.Error.Render(b.message)
		}
		parts = append(parts, msg)
	}
	if b.failed > 0 {
		parts = append(parts, b.styles.Error.Render(fmt.Sprintf("(%d failed)", b.failed)))
	}
	return strings.Join(parts, " ")
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetStep sets the step counter. A zero total hides it.
func (b *Bar) SetStep(step, total int) {
	b.step, b.total = step, total
}

// AddFailure counts one failed step.
func (b *Bar) AddFailure() {
	b.failed++
}

// Failures returns the number of failed steps.
func (b *Bar) Failures() int {
	return b.failed
}

// RenderHints formats bindings as "key: desc | key: desc".
func RenderHints(s *styles.Styles, bindings []key.Binding) string {
	if s == nil {
		s = styles.DefaultStyles()
	}
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.Help.Render(strings.Join(hints, " | "))
}
