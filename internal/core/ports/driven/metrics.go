package driven

import "time"

// Metrics records extraction telemetry.
type Metrics interface {
	// ObserveExtraction records one finished model call or debug run.
	ObserveExtraction(obs ExtractionObservation)
}

// ExtractionObservation describes one finished extraction call.
type ExtractionObservation struct {
	Mode         string
	Model        string
	Status       string
	Subtypes     int
	InputTokens  int
	OutputTokens int
	Cost         float64
	Duration     time.Duration
}
