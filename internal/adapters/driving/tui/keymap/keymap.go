// Package keymap defines keybindings for the interactive prompts.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings of the prompts.
type KeyMap struct {
	// Up moves the cursor up.
	Up key.Binding

	// Down moves the cursor down.
	Down key.Binding

	// Select confirms the highlighted option, or the chosen set in a multi-select.
	Select key.Binding

	// Toggle checks or unchecks the highlighted option of a multi-select.
	Toggle key.Binding

	// All checks every option, or unchecks them when all are checked.
	All key.Binding

	// Yes answers a confirmation positively.
	Yes key.Binding

	// No answers a confirmation negatively.
	No key.Binding

	// Quit abandons the prompt.
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "no"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c", "q"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns the bindings of a single-choice list.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

// MultiHelp returns the bindings of a multi-select list.
func (k *KeyMap) MultiHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Select, k.Quit}
}

// ConfirmHelp returns the bindings of a yes/no question.
func (k *KeyMap) ConfirmHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No, k.Select, k.Quit}
}

// FullHelp returns the full list of keybindings.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Toggle, k.All},
		{k.Yes, k.No, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
