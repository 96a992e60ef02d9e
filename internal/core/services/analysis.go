package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
	"github.com/custodia-labs/cartographer/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// MaxAnalysisFiles caps the number of files in one analysis request.
const MaxAnalysisFiles = 100

// missingIDsShown caps how many unknown cache ids an error message lists.
const missingIDsShown = 5

// AnalysisService detects languages and translation pairs for ad-hoc files.
type AnalysisService struct {
	scanner *ScanService
	cache   driven.FileCache
}

// NewAnalysisService creates an analysis service that parses and detects
// through scanner.
func NewAnalysisService(scanner *ScanService) *AnalysisService {
	return &AnalysisService{scanner: scanner}
}

// SetFileCache sets the cache used by AnalyzeCached.
func (s *AnalysisService) SetFileCache(cache driven.FileCache) {
	s.cache = cache
}

// Analyze detects the language of every file, then pairs them.
// Files keep their input order in the report.
func (s *AnalysisService) Analyze(_ context.Context, files []domain.UploadedFile) (*domain.AnalysisReport, error) {
	if err := checkAnalysisCount(len(files)); err != nil {
		return nil, err
	}
	logger.Info("Starting auto-detect for %d files", len(files))

	seen := make(map[string]struct{}, len(files))
	docs := make([]domain.Document, len(files))
	sources := make([]string, len(files))
	for i, f := range files {
		if _, dup := seen[f.Filename]; dup {
			return nil, fmt.Errorf("analyze: duplicate file name %s: %w", f.Filename, domain.ErrInvalidInput)
		}
		seen[f.Filename] = struct{}{}

		lang, source := ResolveLanguage(s.scanner.detector, f.Filename, f.Content)
		if domain.IsUnknownLanguage(lang) {
			logger.Warn("Could not detect language for %s", f.Filename)
		}
		tokens := f.Tokens
		if tokens == 0 && f.Content != "" {
			tokens = s.scanner.estimator.CountTokens(f.Content)
		}
		docs[i] = domain.Document{Filename: f.Filename, Content: f.Content, Language: lang, Tokens: tokens}
		sources[i] = source
	}

	pairs := AssignPairs(docs, s.scanner.matcher)

	report := &domain.AnalysisReport{
		Files:       make([]domain.DetectedFile, len(docs)),
		PairedCount: pairs,
	}
	pairIndex := make(map[string]int)
	for i, d := range docs {
		report.Files[i] = domain.DetectedFile{
			Filename: d.Filename,
			Language: d.Language,
			BaseName: FindBaseName(d.Filename),
			PairID:   d.PairID,
			Tokens:   d.Tokens,
			Source:   sources[i],
		}
		if !d.IsPaired() {
			report.UnpairedCount++
			continue
		}

		idx, ok := pairIndex[d.PairID]
		if !ok {
			idx = len(report.Pairs)
			pairIndex[d.PairID] = idx
			report.Pairs = append(report.Pairs, domain.PairSummary{PairID: d.PairID})
		}
		p := &report.Pairs[idx]
		switch {
		case domain.IsEnglishVariant(d.Language) && p.Source == "":
			p.Source = d.Filename
		case p.Target == "":
			p.Target = d.Filename
		default:
			p.Source = d.Filename
		}
	}
	sort.SliceStable(report.Pairs, func(i, j int) bool {
		return domain.ComparePairIDs(report.Pairs[i].PairID, report.Pairs[j].PairID) < 0
	})

	logger.Info("Auto-detect complete: %d pairs found, %d unpaired files", report.PairedCount, report.UnpairedCount)
	return report, nil
}

// AnalyzePaths parses files from disk and analyses them. Any parse failure
// fails the whole request.
func (s *AnalysisService) AnalyzePaths(ctx context.Context, paths []string) (*domain.AnalysisReport, error) {
	if err := checkAnalysisCount(len(paths)); err != nil {
		return nil, err
	}

	files := make([]domain.UploadedFile, 0, len(paths))
	for _, path := range paths {
		doc, err := s.scanner.ParseFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", path, err)
		}
		files = append(files, domain.UploadedFile{Filename: doc.Filename, Content: doc.Content, Tokens: doc.Tokens})
	}
	return s.Analyze(ctx, files)
}

// AnalyzeCached analyses files previously stored in the file cache.
func (s *AnalysisService) AnalyzeCached(ctx context.Context, ids []string) (*domain.AnalysisReport, error) {
	if err := checkAnalysisCount(len(ids)); err != nil {
		return nil, err
	}
	if s.cache == nil {
		return nil, fmt.Errorf("analyze cached files: %w: no file cache", domain.ErrConfiguration)
	}

	var (
		files   []domain.UploadedFile
		missing []string
	)
	for _, id := range ids {
		cached, err := s.cache.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("analyze cached file %s: %w", id, err)
		}
		files = append(files, domain.UploadedFile{Filename: cached.Filename, Content: cached.Content, Tokens: cached.Tokens})
	}

	if len(missing) > 0 {
		shown := missing[:min(len(missing), missingIDsShown)]
		return nil, fmt.Errorf("files not found in cache: %s: %w", strings.Join(shown, ", "), domain.ErrNotFound)
	}
	return s.Analyze(ctx, files)
}

func checkAnalysisCount(n int) error {
	if n == 0 {
		return fmt.Errorf("no files provided for analysis: %w", domain.ErrInvalidInput)
	}
	if n > MaxAnalysisFiles {
		return fmt.Errorf("maximum %d files per analysis request: %w", MaxAnalysisFiles, domain.ErrTooManyFiles)
	}
	return nil
}
