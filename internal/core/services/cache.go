package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
	"github.com/custodia-labs/cartographer/internal/logger"
)

// Ensure CacheService implements the interface.
var _ driving.CacheService = (*CacheService)(nil)

// Upload limits.
const (
	MaxUploadSize       = 10 * 1024 * 1024
	MaxUploadBatch      = 50
	UploadPreviewLength = 500
)

// errNoText reports a file that parsed but contained no text.
var errNoText = errors.New("no text content could be extracted")

// CacheService parses uploads once and keeps their text in the file cache.
type CacheService struct {
	scanner *ScanService
	cache   driven.FileCache
}

// NewCacheService creates a cache service that parses through scanner.
func NewCacheService(scanner *ScanService, cache driven.FileCache) *CacheService {
	return &CacheService{scanner: scanner, cache: cache}
}

// Upload validates, parses and caches one file.
func (s *CacheService) Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	raw := domain.NewRawFile(filename, data)
	if filename == "" || raw.Name == "." {
		return nil, fmt.Errorf("upload: no filename provided: %w", domain.ErrInvalidInput)
	}
	if s.scanner.registry == nil || !s.scanner.registry.Supports(raw.Name) {
		return nil, &domain.UnsupportedFormatError{Path: raw.Name, Extension: raw.Extension()}
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("upload %s: %.1fMB exceeds %dMB: %w",
			raw.Name, float64(len(data))/1024/1024, MaxUploadSize/1024/1024, domain.ErrFileTooLarge)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("upload %s: %w", raw.Name, domain.ErrEmptyFile)
	}

	doc, err := s.scanner.parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, &domain.DocumentParsingError{Path: raw.Name, Err: errNoText}
	}

	id, err := s.cache.Store(ctx, doc.Filename, doc.Content, doc.Tokens)
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", raw.Name, err)
	}
	logger.Info("Successfully parsed file: %s (%d tokens)", doc.Filename, doc.Tokens)

	return &domain.UploadResult{
		ID:       id,
		Filename: doc.Filename,
		Tokens:   doc.Tokens,
		Preview:  preview(doc.Content, UploadPreviewLength),
		Language: doc.Language,
	}, nil
}

// UploadMany uploads each file independently. Rejected files are reported
// in their result's Error field.
func (s *CacheService) UploadMany(ctx context.Context, files []*domain.RawFile) ([]domain.UploadResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("upload: no files provided: %w", domain.ErrInvalidInput)
	}
	if len(files) > MaxUploadBatch {
		return nil, fmt.Errorf("upload: maximum %d files per batch: %w", MaxUploadBatch, domain.ErrTooManyFiles)
	}

	results := make([]domain.UploadResult, 0, len(files))
	succeeded := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if f == nil {
			results = append(results, domain.UploadResult{Filename: "unknown", Error: domain.ErrInvalidInput.Error()})
			continue
		}

		res, err := s.Upload(ctx, f.Name, f.Content)
		if err != nil {
			logger.Warn("Failed to parse %s: %v", f.Name, err)
			results = append(results, domain.UploadResult{Filename: f.Name, Error: err.Error()})
			continue
		}
		succeeded++
		results = append(results, *res)
	}

	logger.Info("Batch parse complete: %d/%d successful", succeeded, len(results))
	return results, nil
}

// Get returns a cached file or domain.ErrNotFound.
func (s *CacheService) Get(ctx context.Context, id string) (*domain.CachedFile, error) {
	if id == "" {
		return nil, fmt.Errorf("file id is required: %w", domain.ErrInvalidInput)
	}
	return s.cache.Get(ctx, id)
}

// Delete removes a cached file.
func (s *CacheService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("file id is required: %w", domain.ErrInvalidInput)
	}
	ok, err := s.cache.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	logger.Info("Deleted file: %s", id)
	return nil
}

// Cleanup removes expired entries.
func (s *CacheService) Cleanup(ctx context.Context) (domain.CleanupStats, error) {
	stats, err := s.cache.CleanupExpired(ctx)
	if err != nil {
		return stats, fmt.Errorf("cleanup cache: %w", err)
	}
	if stats.Removed > 0 || stats.Skipped > 0 {
		logger.Info("Cache cleanup: removed %d, skipped %d locked", stats.Removed, stats.Skipped)
	}
	return stats, nil
}

// preview returns the first n characters of s, marked with "..." when cut.
func preview(s string, n int) string {
	cut := truncateRunes(s, n)
	if len(cut) < len(s) {
		return cut + "..."
	}
	return cut
}
