package driving

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// AnalysisService auto-detects languages and translation pairs.
type AnalysisService interface {
	// Analyze detects languages and pairs for in-memory files.
	Analyze(ctx context.Context, files []domain.UploadedFile) (*domain.AnalysisReport, error)

	// AnalyzePaths parses files from disk and analyses them.
	AnalyzePaths(ctx context.Context, paths []string) (*domain.AnalysisReport, error)

	// AnalyzeCached analyses files previously stored in the file cache.
	AnalyzeCached(ctx context.Context, ids []string) (*domain.AnalysisReport, error)
}
