package cli

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
)

type mockScanService struct {
	clients  []domain.ClientInfo
	sets     []domain.DocumentSet
	err      error
	lastOpts driving.ScanOptions
	calls    int
}

func (m *mockScanService) ListClients(_ context.Context) ([]domain.ClientInfo, error) {
	return m.clients, m.err
}

func (m *mockScanService) ScanClient(
	_ context.Context, _ string, opts driving.ScanOptions,
) ([]domain.DocumentSet, error) {
	m.calls++
	m.lastOpts = opts
	return m.sets, m.err
}

func (m *mockScanService) ParseFile(_ context.Context, path string) (domain.Document, error) {
	return domain.Document{Filename: path}, m.err
}

type mockAnalysisService struct {
	report *domain.AnalysisReport
	err    error
	cached bool
}

func (m *mockAnalysisService) Analyze(_ context.Context, _ []domain.UploadedFile) (*domain.AnalysisReport, error) {
	return m.report, m.err
}

func (m *mockAnalysisService) AnalyzePaths(_ context.Context, _ []string) (*domain.AnalysisReport, error) {
	return m.report, m.err
}

func (m *mockAnalysisService) AnalyzeCached(_ context.Context, _ []string) (*domain.AnalysisReport, error) {
	m.cached = true
	return m.report, m.err
}

type mockExtractionService struct {
	results  *domain.Results
	events   []domain.ExtractionEvent
	estimate domain.CostEstimate
	err      error
	saveErr  error
	runs     []domain.ExtractionRequest
	saved    []string
}

func (m *mockExtractionService) ExtractOne(_ context.Context, set domain.DocumentSet) (domain.ExtractionResult, error) {
	res, _ := m.results.Get(set.Subtype)
	return res, m.err
}

func (m *mockExtractionService) ExtractBatch(_ context.Context, _ []domain.DocumentSet) (*domain.Results, error) {
	return m.results, m.err
}

func (m *mockExtractionService) Run(
	_ context.Context, req domain.ExtractionRequest, sink driving.EventSink,
) (*domain.Results, error) {
	m.runs = append(m.runs, req)
	for _, ev := range m.events {
		sink(ev)
	}
	return m.results, m.err
}

func (m *mockExtractionService) Save(
	_ context.Context, client, subtype string, _ domain.ExtractionResult,
) ([]string, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	paths := []string{
		"output/" + client + "/" + subtype + "/client_rules.js",
		"output/" + client + "/" + subtype + "/guidelines.md",
	}
	m.saved = append(m.saved, paths...)
	return paths, nil
}

func (m *mockExtractionService) Estimate(_ []domain.DocumentSet, batch bool) domain.CostEstimate {
	e := m.estimate
	if batch {
		e.Mode = domain.ModeBatch
		e.Calls = 1
	}
	return e
}

func (m *mockExtractionService) BuildPrompt(_ string, _ []domain.DocumentSet) (string, error) {
	return "prompt", m.err
}

type mockCacheService struct {
	uploads []domain.UploadResult
	file    *domain.CachedFile
	stats   domain.CleanupStats
	err     error
	deleted []string
}

func (m *mockCacheService) Upload(_ context.Context, filename string, _ []byte) (*domain.UploadResult, error) {
	return &domain.UploadResult{Filename: filename}, m.err
}

func (m *mockCacheService) UploadMany(_ context.Context, files []*domain.RawFile) ([]domain.UploadResult, error) {
	if m.uploads != nil {
		return m.uploads, m.err
	}
	out := make([]domain.UploadResult, len(files))
	for i, f := range files {
		out[i] = domain.UploadResult{ID: "id-" + f.Name, Filename: f.Name, Tokens: len(f.Content), Language: "EN"}
	}
	return out, m.err
}

func (m *mockCacheService) Get(_ context.Context, _ string) (*domain.CachedFile, error) {
	return m.file, m.err
}

func (m *mockCacheService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCacheService) Cleanup(_ context.Context) (domain.CleanupStats, error) {
	return m.stats, m.err
}

type mockHistoryService struct {
	records    []domain.ExtractionRecord
	err        error
	lastClient string
	lastLimit  int
}

func (m *mockHistoryService) List(_ context.Context, client string, limit int) ([]domain.ExtractionRecord, error) {
	m.lastClient, m.lastLimit = client, limit
	return m.records, m.err
}
