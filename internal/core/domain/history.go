package domain

import "time"

// RunStatus is the outcome of one subtype extraction.
type RunStatus string

// Run outcomes.
const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunDebug     RunStatus = "debug"
)

// ExtractionRecord is one row of the extraction history ledger.
type ExtractionRecord struct {
	ID           string         `json:"id" yaml:"id"`
	RunID        string         `json:"run_id" yaml:"run_id"`
	ClientName   string         `json:"client_name" yaml:"client_name"`
	Subtype      string         `json:"subtype" yaml:"subtype"`
	Mode         ProcessingMode `json:"mode" yaml:"mode"`
	Model        string         `json:"model" yaml:"model"`
	Documents    int            `json:"documents" yaml:"documents"`
	InputTokens  int            `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int            `json:"output_tokens" yaml:"output_tokens"`
	Cost         float64        `json:"cost" yaml:"cost"`
	Status       RunStatus      `json:"status" yaml:"status"`
	Error        string         `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
}
