package mcp

import (
	"net/http"

	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Scan lists clients and parses their folders.
	Scan driving.ScanService

	// Extraction builds prompts, estimates costs and calls the model.
	Extraction driving.ExtractionService

	// Analysis detects languages and pairs in arbitrary files.
	Analysis driving.AnalysisService

	// History reads the extraction ledger.
	History driving.HistoryService

	// Metrics is served at /metrics by RunHTTP when set.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Scan == nil {
		return ErrMissingScanService
	}
	if p.Extraction == nil {
		return ErrMissingExtractionService
	}
	// Analysis and History are optional.
	return nil
}
