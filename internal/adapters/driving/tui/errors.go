package tui

import "errors"

// ErrCancelled is returned when the user abandons a prompt.
var ErrCancelled = errors.New("tui: prompt cancelled")

// ErrNoOptions is returned when a selector is asked to choose from nothing.
var ErrNoOptions = errors.New("tui: no options to choose from")
