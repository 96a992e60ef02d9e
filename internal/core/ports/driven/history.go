package driven

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// HistoryStore persists the extraction ledger.
type HistoryStore interface {
	// Record appends an extraction record.
	Record(ctx context.Context, rec domain.ExtractionRecord) error

	// List returns records newest first. An empty client lists all clients.
	List(ctx context.Context, client string, limit int) ([]domain.ExtractionRecord, error)
}
