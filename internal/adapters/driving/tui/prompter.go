// Package tui runs the interactive prompts of the CLI: option selectors,
// yes/no confirmations and the extraction progress spinner.
package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/views/confirm"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/views/progress"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/views/selector"
)

// Prompter runs prompt programs against a terminal.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

// NewPrompter creates a prompter reading keys from in and drawing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Select asks for one option and returns its index.
func (p *Prompter) Select(title string, options []list.Option) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	m := selector.New(title, options, false, false)
	if err := p.run(m); err != nil {
		return 0, err
	}
	if m.Cancelled() || len(m.Chosen()) == 0 {
		return 0, ErrCancelled
	}
	return m.Chosen()[0], nil
}

// MultiSelect asks for one or more options, all checked initially, and
// returns the chosen indices in option order.
func (p *Prompter) MultiSelect(title string, options []list.Option) ([]int, error) {
	if len(options) == 0 {
		return nil, ErrNoOptions
	}
	m := selector.New(title, options, true, true)
	if err := p.run(m); err != nil {
		return nil, err
	}
	if m.Cancelled() {
		return nil, ErrCancelled
	}
	return m.Chosen(), nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(question string, defaultYes bool) (bool, error) {
	m := confirm.New(question, defaultYes)
	if err := p.run(m); err != nil {
		return false, err
	}
	if m.Cancelled() {
		return false, ErrCancelled
	}
	yes, _ := m.Answer()
	return yes, nil
}

func (p *Prompter) run(m tea.Model) error {
	prog := tea.NewProgram(m, tea.WithInput(p.in), tea.WithOutput(p.out))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run prompt: %w", err)
	}
	return nil
}

// Progress shows a spinner with a status line while work runs elsewhere.
// Lines printed through it appear above the spinner.
type Progress struct {
	prog *tea.Program
	done chan struct{}
	err  error
}

// StartProgress starts a spinner drawing to out. Signals are left to the
// caller so that Ctrl+C cancels the caller's context.
func StartProgress(out io.Writer, message string) *Progress {
	p := &Progress{
		prog: tea.NewProgram(progress.New(message),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		_, p.err = p.prog.Run()
	}()
	return p
}

// Status replaces the status line.
func (p *Progress) Status(message string, step, total int) {
	p.prog.Send(messages.Status{Message: message, Step: step, Total: total})
}

// Println prints a line above the spinner.
func (p *Progress) Println(line string) {
	p.prog.Println(line)
}

// Fail counts a failed step and prints its message.
func (p *Progress) Fail(message string) {
	p.prog.Send(messages.StepFailed{Message: message})
	p.prog.Println(message)
}

// Stop ends the spinner with a final message and waits for it to exit.
func (p *Progress) Stop(message string, err error) error {
	p.prog.Send(messages.Done{Message: message, Err: err})
	<-p.done
	return p.err
}
