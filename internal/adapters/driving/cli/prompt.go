package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// prompter asks the user to choose or confirm.
type prompter interface {
	Select(title string, options []list.Option) (int, error)
	MultiSelect(title string, options []list.Option) ([]int, error)
	Confirm(question string, defaultYes bool) (bool, error)
}

// reporter shows the progress of a run.
type reporter interface {
	Status(message string, step, total int)
	Println(line string)
	Fail(message string)
	Stop(message string, err error) error
}

func newPrompter(cmd *cobra.Command) prompter {
	if isInteractive(cmd) {
		return tui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return newLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
}

func newReporter(cmd *cobra.Command, message string) reporter {
	if isInteractive(cmd) {
		return tui.StartProgress(cmd.OutOrStdout(), message)
	}
	r := &lineReporter{out: cmd.OutOrStdout()}
	r.Println(message)
	return r
}

// linePrompter asks questions one line at a time, for pipes and dumb terminals.
type linePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{reader: bufio.NewReader(in), out: out}
}

func (p *linePrompter) Select(title string, options []list.Option) (int, error) {
	if len(options) == 0 {
		return 0, tui.ErrNoOptions
	}
	p.printOptions(title, options)
	fmt.Fprint(p.out, "Choice [1]: ")

	input := readLine(p.reader)
	if input == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("%w: choice %q (want 1-%d)", domain.ErrInvalidInput, input, len(options))
	}
	return n - 1, nil
}

func (p *linePrompter) MultiSelect(title string, options []list.Option) ([]int, error) {
	if len(options) == 0 {
		return nil, tui.ErrNoOptions
	}
	p.printOptions(title, options)
	fmt.Fprint(p.out, "Choices, comma separated [all]: ")

	input := readLine(p.reader)
	if input == "" || strings.EqualFold(input, "all") {
		all := make([]int, len(options))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	seen := make(map[int]bool)
	var chosen []int
	for _, field := range strings.Split(input, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 || n > len(options) {
			return nil, fmt.Errorf("%w: choice %q (want 1-%d)", domain.ErrInvalidInput, field, len(options))
		}
		if !seen[n-1] {
			seen[n-1] = true
			chosen = append(chosen, n-1)
		}
	}
	return chosen, nil
}

func (p *linePrompter) Confirm(question string, defaultYes bool) (bool, error) {
	choices := "[y/N]"
	if defaultYes {
		choices = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s: ", question, choices)

	switch strings.ToLower(readLine(p.reader)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return defaultYes, nil
	}
}

func (p *linePrompter) printOptions(title string, options []list.Option) {
	fmt.Fprintln(p.out, title)
	for i, opt := range options {
		line := fmt.Sprintf("  %d) %s", i+1, opt.Label)
		if opt.Detail != "" {
			line += "  (" + opt.Detail + ")"
		}
		fmt.Fprintln(p.out, line)
	}
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// lineReporter prints progress as plain lines.
type lineReporter struct {
	out io.Writer
}

func (r *lineReporter) Status(message string, step, total int) {
	if total > 0 {
		fmt.Fprintf(r.out, "[%d/%d] %s\n", step, total, message)
		return
	}
	fmt.Fprintln(r.out, message)
}

func (r *lineReporter) Println(line string) {
	fmt.Fprintln(r.out, line)
}

func (r *lineReporter) Fail(message string) {
	fmt.Fprintln(r.out, message)
}

func (r *lineReporter) Stop(message string, _ error) error {
	if message != "" {
		fmt.Fprintln(r.out, message)
	}
	return nil
}
