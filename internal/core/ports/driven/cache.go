package driven

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// FileCache is a key-value store of parsed uploads with a time-to-live.
//
// Implementations guard each entry with an advisory lock: exclusive for
// writes and deletes, shared for reads. CleanupExpired must not wait on
// a locked entry; it skips it instead.
type FileCache interface {
	// Store saves a parsed file and returns its new id.
	Store(ctx context.Context, filename, content string, tokens int) (string, error)

	// Get returns the entry, or domain.ErrNotFound when absent or expired.
	Get(ctx context.Context, id string) (*domain.CachedFile, error)

	// Delete removes an entry and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// CleanupExpired removes expired and malformed entries.
	CleanupExpired(ctx context.Context) (domain.CleanupStats, error)
}
