package driving

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// CacheService manages parsed uploads.
type CacheService interface {
	// Upload validates, parses and caches one file.
	Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error)

	// UploadMany uploads several files. Failures are reported per file
	// in UploadResult.Error and do not stop the others.
	UploadMany(ctx context.Context, files []*domain.RawFile) ([]domain.UploadResult, error)

	// Get returns a cached file or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.CachedFile, error)

	// Delete removes a cached file. Returns domain.ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) (domain.CleanupStats, error)
}
