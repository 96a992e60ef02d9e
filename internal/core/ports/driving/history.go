package driving

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// HistoryService exposes the extraction ledger.
type HistoryService interface {
	// List returns the most recent records, newest first.
	List(ctx context.Context, client string, limit int) ([]domain.ExtractionRecord, error)
}
