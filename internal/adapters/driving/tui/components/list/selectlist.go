// Package list provides the option list used by the selector prompts.
package list

import (
	"strings"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/styles"
)

// Option is one selectable entry.
type Option struct {
	// Label is the primary text, e.g. a client name.
	Label string

	// Detail is shown muted after the label, e.g. "3 subtypes".
	Detail string
}

// SelectList displays options with a cursor and, in multi mode, check boxes.
type SelectList struct {
	options []Option
	cursor  int
	multi   bool
	checked map[int]bool
	styles  *styles.Styles
	height  int
}

// NewSelectList creates a list. In multi mode every option starts checked
// when checkAll is set.
func NewSelectList(s *styles.Styles, options []Option, multi, checkAll bool) *SelectList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	l := &SelectList{
		options: options,
		multi:   multi,
		checked: make(map[int]bool, len(options)),
		styles:  s,
		height:  10,
	}
	if multi && checkAll {
		for i := range options {
			l.checked[i] = true
		}
	}
	return l
}

// View renders the visible window of options.
func (l *SelectList) View() string {
	if len(l.options) == 0 {
		return l.styles.Muted.Render("No options")
	}

	start := 0
	if l.cursor >= l.height {
		start = l.cursor - l.height + 1
	}
	end := start + l.height
	if end > len(l.options) {
		end = len(l.options)
	}

	lines := make([]string, 0, end-start+2)
	if start > 0 {
		lines = append(lines, l.styles.Muted.Render("  ↑ more"))
	}
	for i := start; i < end; i++ {
		lines = append(lines, l.renderOption(i))
	}
	if end < len(l.options) {
		lines = append(lines, l.styles.Muted.Render("  ↓ more"))
	}
	return strings.Join(lines, "\n")
}

func (l *SelectList) renderOption(i int) string {
	opt := l.options[i]

	indicator := "  "
	if i == l.cursor {
		indicator = l.styles.Cursor.Render("> ")
	}

	box := ""
	if l.multi {
		box = "[ ] "
		if l.checked[i] {
			box = l.styles.Checked.Render("[x]") + " "
		}
	}

	label := l.styles.Normal.Render(opt.Label)
	if i == l.cursor {
		label = l.styles.Cursor.Render(opt.Label)
	}

	line := indicator + box + label
	if opt.Detail != "" {
		line += "  " + l.styles.Muted.Render(opt.Detail)
	}
	return line
}

// MoveUp moves the cursor up.
func (l *SelectList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// MoveDown moves the cursor down.
func (l *SelectList) MoveDown() {
	if l.cursor < len(l.options)-1 {
		l.cursor++
	}
}

// Cursor returns the highlighted index.
func (l *SelectList) Cursor() int {
	return l.cursor
}

// Toggle flips the check of the highlighted option. No-op outside multi mode.
func (l *SelectList) Toggle() {
	if !l.multi || len(l.options) == 0 {
		return
	}
	l.checked[l.cursor] = !l.checked[l.cursor]
}

// ToggleAll checks every option, or clears them all when all are checked.
func (l *SelectList) ToggleAll() {
	if !l.multi {
		return
	}
	all := len(l.Checked()) == len(l.options)
	for i := range l.options {
		l.checked[i] = !all
	}
}

// Checked returns the checked indices in option order.
func (l *SelectList) Checked() []int {
	out := make([]int, 0, len(l.checked))
	for i := range l.options {
		if l.checked[i] {
			out = append(out, i)
		}
	}
	return out
}

// SetHeight sets how many options are visible at once.
func (l *SelectList) SetHeight(height int) {
	if height < 1 {
		height = 1
	}
	l.height = height
}

// Count returns the number of options.
func (l *SelectList) Count() int {
	return len(l.options)
}

// IsMulti reports whether the list is a multi-select.
func (l *SelectList) IsMulti() bool {
	return l.multi
}
