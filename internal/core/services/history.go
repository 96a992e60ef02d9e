package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultHistoryLimit is used when List is called without a positive limit.
const DefaultHistoryLimit = 20

// HistoryService reads the extraction ledger.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns the most recent records, newest first. An empty client lists all clients.
func (s *HistoryService) List(ctx context.Context, client string, limit int) ([]domain.ExtractionRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("list history: %w: no history store", domain.ErrConfiguration)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	records, err := s.store.List(ctx, client, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}
