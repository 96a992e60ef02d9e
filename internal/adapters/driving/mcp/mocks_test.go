package mcp

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
)

// mockScanService is a mock implementation of driving.ScanService.
type mockScanService struct {
	clients  []domain.ClientInfo
	sets     []domain.DocumentSet
	err      error
	lastOpts driving.ScanOptions
}

func (m *mockScanService) ListClients(_ context.Context) ([]domain.ClientInfo, error) {
	return m.clients, m.err
}

func (m *mockScanService) ScanClient(
	_ context.Context, _ string, opts driving.ScanOptions,
) ([]domain.DocumentSet, error) {
	m.lastOpts = opts
	return m.sets, m.err
}

func (m *mockScanService) ParseFile(_ context.Context, path string) (domain.Document, error) {
	return domain.Document{Filename: path}, m.err
}

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	results  *domain.Results
	events   []domain.ExtractionEvent
	estimate domain.CostEstimate
	err      error
	saveErr  error
	lastReq  domain.ExtractionRequest
	saved    []string
}

func (m *mockExtractionService) ExtractOne(
	_ context.Context, set domain.DocumentSet,
) (domain.ExtractionResult, error) {
	res, _ := m.results.Get(set.Subtype)
	return res, m.err
}

func (m *mockExtractionService) ExtractBatch(
	_ context.Context, _ []domain.DocumentSet,
) (*domain.Results, error) {
	return m.results, m.err
}

func (m *mockExtractionService) Run(
	_ context.Context, req domain.ExtractionRequest, sink driving.EventSink,
) (*domain.Results, error) {
	m.lastReq = req
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
	paths := []string{client + "/" + subtype + "/client_rules.js", client + "/" + subtype + "/guidelines.md"}
	m.saved = append(m.saved, paths...)
	return paths, nil
}

func (m *mockExtractionService) Estimate(_ []domain.DocumentSet, _ bool) domain.CostEstimate {
	return m.estimate
}

func (m *mockExtractionService) BuildPrompt(_ string, _ []domain.DocumentSet) (string, error) {
	return "prompt", m.err
}

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	report    *domain.AnalysisReport
	err       error
	lastPaths []string
	lastIDs   []string
}

func (m *mockAnalysisService) Analyze(
	_ context.Context, _ []domain.UploadedFile,
) (*domain.AnalysisReport, error) {
	return m.report, m.err
}

func (m *mockAnalysisService) AnalyzePaths(_ context.Context, paths []string) (*domain.AnalysisReport, error) {
	m.lastPaths = paths
	return m.report, m.err
}

func (m *mockAnalysisService) AnalyzeCached(_ context.Context, ids []string) (*domain.AnalysisReport, error) {
	m.lastIDs = ids
	return m.report, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records    []domain.ExtractionRecord
	err        error
	lastClient string
	lastLimit  int
}

func (m *mockHistoryService) List(
	_ context.Context, client string, limit int,
) ([]domain.ExtractionRecord, error) {
	m.lastClient, m.lastLimit = client, limit
	return m.records, m.err
}

func newTestPorts() (*Ports, *mockScanService, *mockExtractionService) {
	scan := &mockScanService{}
	extraction := &mockExtractionService{results: domain.NewResults()}
	return &Ports{Scan: scan, Extraction: extraction}, scan, extraction
}
