package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	records []domain.ExtractionRecord
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Record appends an extraction record.
func (s *HistoryStore) Record(_ context.Context, rec domain.ExtractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// List returns records newest first. An empty client lists all clients;
// a non-positive limit returns everything.
func (s *HistoryStore) List(_ context.Context, client string, limit int) ([]domain.ExtractionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ExtractionRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		if client == "" || s.records[i].ClientName == client {
			result = append(result, s.records[i])
		}
	}
	// Stable keeps insertion order, newest first, for equal timestamps
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
