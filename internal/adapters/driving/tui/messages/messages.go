// Package messages defines Bubbletea message types exchanged between the
// CLI and the running prompt programs.
package messages

// Status updates the status line of a progress program.
type Status struct {
	Message string

	// Step and Total drive the "[step/total]" counter. Zero Total hides it.
	Step  int
	Total int
}

// StepFailed counts one failed step and shows its message.
type StepFailed struct {
	Message string
}

// Done stops a progress program. A non-empty Err marks the run failed.
type Done struct {
	Message string
	Err     error
}
