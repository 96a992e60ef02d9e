package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
	"github.com/custodia-labs/cartographer/internal/logger"
)

// Ensure ScanService implements the interface.
var _ driving.ScanService = (*ScanService)(nil)

// GeneralSubtype names the single subtype of a client folder without subfolders.
const GeneralSubtype = "general"

// defaultParseWorkers bounds concurrent file parsing within a subtype.
const defaultParseWorkers = 4

// ScanService discovers clients and parses their documents.
type ScanService struct {
	settings  domain.Settings
	registry  driven.NormaliserRegistry
	detector  driven.LanguageDetector
	estimator *Estimator
	matcher   PairMatcher
	workers   int
}

// NewScanService creates a scan service. A nil detector leaves languages
// not named in the file name unknown.
func NewScanService(
	settings domain.Settings,
	registry driven.NormaliserRegistry,
	detector driven.LanguageDetector,
	estimator *Estimator,
) *ScanService {
	if estimator == nil {
		estimator = NewEstimator(nil)
	}
	return &ScanService{
		settings:  settings,
		registry:  registry,
		detector:  detector,
		estimator: estimator,
		matcher:   ExactBaseNameMatcher{},
		workers:   defaultParseWorkers,
	}
}

// SetPairMatcher replaces the strategy used to pair translations.
func (s *ScanService) SetPairMatcher(m PairMatcher) {
	if m == nil {
		m = ExactBaseNameMatcher{}
	}
	s.matcher = m
}

// SetWorkers sets how many files of a subtype are parsed at once.
func (s *ScanService) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.workers = n
}

// ListClients returns the client folders under the input directory, sorted.
func (s *ScanService) ListClients(_ context.Context) ([]domain.ClientInfo, error) {
	dirs, err := subdirectories(s.settings.InputDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.ConfigurationError{Field: "INPUT_DIR", Reason: "does not exist: " + s.settings.InputDir}
	}
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	clients := make([]domain.ClientInfo, 0, len(dirs))
	for _, name := range dirs {
		subtypes, err := subdirectories(filepath.Join(s.settings.InputDir, name))
		if err != nil {
			logger.Warn("Failed to read client folder %s: %v", name, err)
		}
		clients = append(clients, domain.ClientInfo{Name: name, Subtypes: subtypes})
	}
	return clients, nil
}

// ScanClient parses every supported file of a client. Each subfolder is a
// subtype; a folder without subfolders is scanned as GeneralSubtype.
// Files that fail to parse are logged and skipped.
func (s *ScanService) ScanClient(
	ctx context.Context, client string, opts driving.ScanOptions,
) ([]domain.DocumentSet, error) {
	if client == "" || client != filepath.Base(client) || strings.HasPrefix(client, ".") {
		return nil, fmt.Errorf("scan client %q: %w", client, domain.ErrInvalidInput)
	}

	clientDir := s.settings.ClientDir(client)
	info, err := os.Stat(clientDir)
	if err != nil || !info.IsDir() {
		return nil, &domain.ClientNotFoundError{Client: client, InputDir: s.settings.InputDir}
	}

	subtypes, err := subdirectories(clientDir)
	if err != nil {
		return nil, fmt.Errorf("scan client %s: %w", client, err)
	}

	type folder struct{ subtype, path string }
	var folders []folder
	if len(subtypes) == 0 {
		folders = append(folders, folder{GeneralSubtype, clientDir})
	}
	for _, name := range subtypes {
		folders = append(folders, folder{name, filepath.Join(clientDir, name)})
	}

	if len(opts.Subtypes) > 0 {
		var selected []folder
		for _, f := range folders {
			if slices.Contains(opts.Subtypes, f.subtype) {
				selected = append(selected, f)
			}
		}
		for _, want := range opts.Subtypes {
			if !slices.ContainsFunc(folders, func(f folder) bool { return f.subtype == want }) {
				logger.Warn("Subtype %s not found for client %s", want, client)
			}
		}
		folders = selected
	}

	var sets []domain.DocumentSet
	for _, f := range folders {
		docs, err := s.scanFolder(ctx, clientDir, f.path)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			logger.Debug("No supported files in %s", f.path)
			continue
		}

		if !opts.NoPair {
			pairs := AssignPairs(docs, s.matcher)
			SortByPair(docs)
			logger.Debug("Subtype %s: %d pairs", f.subtype, pairs)
		}

		set := domain.NewDocumentSet(client, f.subtype, docs)
		logger.Info("Scanned %s: %d documents, %s tokens", f.subtype, len(docs), numbers.Sprintf("%d", set.TotalTokens))
		sets = append(sets, set)
	}

	if len(sets) == 0 {
		return nil, &domain.NoDocumentsFoundError{Path: clientDir}
	}
	return sets, nil
}

// ParseFile extracts, detects and counts a single file on disk.
func (s *ScanService) ParseFile(ctx context.Context, path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return s.parse(ctx, domain.NewRawFile(path, data))
}

// parse normalises raw and builds its document.
func (s *ScanService) parse(ctx context.Context, raw *domain.RawFile) (domain.Document, error) {
	if s.registry == nil {
		return domain.Document{}, fmt.Errorf("parse %s: %w: no normaliser registry", raw.Name, domain.ErrConfiguration)
	}

	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return domain.Document{}, err
	}

	lang, _ := ResolveLanguage(s.detector, raw.Name, result.Content)
	return domain.Document{
		Filename: raw.Name,
		Content:  result.Content,
		Language: lang,
		Tokens:   s.estimator.CountTokens(result.Content),
	}, nil
}

// scanFolder parses the supported files directly inside dir in name order.
func (s *ScanService) scanFolder(ctx context.Context, clientDir, dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if s.registry == nil || !s.registry.Supports(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if s.excluded(clientDir, path) {
			logger.Debug("Excluded %s", path)
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	parsed := make([]*domain.Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := s.ParseFile(gctx, path)
			if err != nil {
				logger.Warn("Failed to parse %s: %v", path, err)
				return nil
			}
			parsed[i] = &doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	docs := make([]domain.Document, 0, len(parsed))
	for _, d := range parsed {
		if d != nil {
			docs = append(docs, *d)
		}
	}
	return docs, nil
}

// excluded reports whether path matches an exclude pattern, either by its
// slash-separated path relative to the client folder or by its base name.
func (s *ScanService) excluded(clientDir, path string) bool {
	if len(s.settings.ExcludePatterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(clientDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)

	for _, pattern := range s.settings.ExcludePatterns {
		for _, name := range []string{rel, base} {
			ok, err := doublestar.Match(pattern, name)
			if err != nil {
				logger.Warn("Invalid exclude pattern %q: %v", pattern, err)
				break
			}
			if ok {
				return true
			}
		}
	}
	return false
}

// subdirectories returns the sorted names of the visible folders in dir.
func subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
