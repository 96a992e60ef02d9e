package domain

// EventType identifies a progress event emitted during an extraction run.
type EventType string

// Extraction event types, in the order a run emits them.
const (
	EventStarted         EventType = "started"
	EventProgress        EventType = "progress"
	EventSubtypeComplete EventType = "subtype_complete"
	EventError           EventType = "error"
	EventComplete        EventType = "complete"
)

// RunTotals aggregates usage for a finished run.
type RunTotals struct {
	Subtypes     int     `json:"subtypes"`
	Succeeded    int     `json:"succeeded"`
	Failed       int     `json:"failed"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// ExtractionEvent reports progress of a run to a caller-supplied sink.
type ExtractionEvent struct {
	Type    EventType
	RunID   string
	Subtype string
	// Index is the 1-based position of Subtype; Total is the number of subtypes.
	Index   int
	Total   int
	Message string
	Result  *ExtractionResult
	Err     error
	Totals  *RunTotals
}

// ExtractionRequest describes one extraction run.
type ExtractionRequest struct {
	ClientName string
	Sets       []DocumentSet
	Batch      bool
	Debug      bool
}
