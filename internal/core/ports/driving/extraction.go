package driving

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// EventSink receives progress events of an extraction run.
type EventSink func(domain.ExtractionEvent)

// ExtractionService runs prompt building, model calls and response parsing.
type ExtractionService interface {
	// ExtractOne processes a single subtype.
	ExtractOne(ctx context.Context, set domain.DocumentSet) (domain.ExtractionResult, error)

	// ExtractBatch processes every subtype with one model call.
	ExtractBatch(ctx context.Context, sets []domain.DocumentSet) (*domain.Results, error)

	// Run processes a request, streaming events to sink, and returns the
	// successful results. Per-subtype failures are reported as events.
	Run(ctx context.Context, req domain.ExtractionRequest, sink EventSink) (*domain.Results, error)

	// Save writes both artifacts of a result and returns their paths.
	Save(ctx context.Context, client, subtype string, result domain.ExtractionResult) ([]string, error)

	// Estimate returns the pre-flight cost estimate for sets.
	Estimate(sets []domain.DocumentSet, batch bool) domain.CostEstimate

	// BuildPrompt returns the prompt that would be sent for sets.
	BuildPrompt(clientName string, sets []domain.DocumentSet) (string, error)
}
