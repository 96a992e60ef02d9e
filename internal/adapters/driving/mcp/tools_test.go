package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

func testSets() []domain.DocumentSet {
	return []domain.DocumentSet{
		domain.NewDocumentSet("acme", "gift_cards", []domain.Document{
			{Filename: "a_EN.txt", Language: "EN", PairID: "pair_1", Tokens: 10},
			{Filename: "a_DE.txt", Language: "DE", PairID: "pair_1", Tokens: 12},
		}),
		domain.NewDocumentSet("acme", "emails", []domain.Document{
			{Filename: "welcome.txt", Language: "EN", Tokens: 5},
		}),
	}
}

func TestHandleListClients(t *testing.T) {
	ports, scan, _ := newTestPorts()
	scan.clients = []domain.ClientInfo{{Name: "acme", Subtypes: []string{"emails"}}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, output, err := server.handleListClients(context.Background(), nil, ListClientsInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)
	assert.Equal(t, "acme", output.Clients[0].Name)
}

func TestHandleListClients_EmptyIsNotNull(t *testing.T) {
	ports, _, _ := newTestPorts()
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, output, err := server.handleListClients(context.Background(), nil, ListClientsInput{})
	require.NoError(t, err)
	assert.NotNil(t, output.Clients)
	assert.Zero(t, output.Count)
}

func TestHandleScanClient(t *testing.T) {
	ports, scan, _ := newTestPorts()
	scan.sets = testSets()
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, output, err := server.handleScanClient(context.Background(), nil, ScanInput{
		Client:   "acme",
		Subtypes: []string{"gift_cards", "emails"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"gift_cards", "emails"}, scan.lastOpts.Subtypes)
	require.Len(t, output.Subtypes, 2)
	assert.Equal(t, "gift_cards", output.Subtypes[0].Subtype)
	assert.Equal(t, 2, output.Subtypes[0].Documents)
	assert.Equal(t, 1, output.Subtypes[0].Pairs)
	assert.Equal(t, 22, output.Subtypes[0].Tokens)
	assert.Equal(t, 0, output.Subtypes[1].Pairs)
	assert.Equal(t, 3, output.TotalDocuments)
	assert.Equal(t, 27, output.TotalTokens)
}

func TestHandleScanClient_RequiresClient(t *testing.T) {
	ports, _, _ := newTestPorts()
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, _, err = server.handleScanClient(context.Background(), nil, ScanInput{Client: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandleScanClient_ClientNotFound(t *testing.T) {
	ports, scan, _ := newTestPorts()
	scan.err = &domain.ClientNotFoundError{Client: "ghost", InputDir: "./input"}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, _, err = server.handleScanClient(context.Background(), nil, ScanInput{Client: "ghost"})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestHandleEstimateCost(t *testing.T) {
	ports, scan, extraction := newTestPorts()
	scan.sets = testSets()
	extraction.estimate = domain.CostEstimate{
		Mode: domain.ModeBatch, Calls: 1, InputTokens: 1000, OutputTokens: 500, Cost: 0.05, Model: domain.DefaultModel,
	}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, output, err := server.handleEstimateCost(context.Background(), nil, EstimateInput{Client: "acme", Batch: true})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeBatch, output.Mode)
	assert.Equal(t, 1, output.Calls)
	assert.Equal(t, "$0.0500", output.Formatted)
}

func TestHandleExtract(t *testing.T) {
	ports, scan, extraction := newTestPorts()
	scan.sets = testSets()
	extraction.results.Set("gift_cards", domain.ExtractionResult{
		ClientRules: "// rules", Guidelines: "# guide", InputTokens: 100, OutputTokens: 40,
	})
	extraction.events = []domain.ExtractionEvent{
		{Type: domain.EventStarted, RunID: "run-1"},
		{Type: domain.EventError, Subtype: "emails", Err: errors.New("rate limited")},
		{Type: domain.EventComplete, Totals: &domain.RunTotals{Subtypes: 2, Succeeded: 1, Failed: 1}},
	}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, output, err := server.handleExtract(context.Background(), nil, ExtractInput{Client: "acme", Save: true, Debug: true})
	require.NoError(t, err)

	assert.True(t, extraction.lastReq.Debug)
	assert.Equal(t, "acme", extraction.lastReq.ClientName)
	assert.Equal(t, "run-1", output.RunID)
	require.NotNil(t, output.Totals)
	assert.Equal(t, 1, output.Totals.Failed)

	require.Len(t, output.Results, 2)
	assert.Equal(t, "gift_cards", output.Results[0].Subtype)
	assert.Equal(t, "// rules", output.Results[0].ClientRules)
	assert.Len(t, output.Results[0].Files, 2)
	assert.Empty(t, output.Results[0].Error)

	assert.Equal(t, "emails", output.Results[1].Subtype)
	assert.Equal(t, "rate limited", output.Results[1].Error)
	assert.Empty(t, output.Results[1].Files)
}

func TestHandleExtract_BatchFailure(t *testing.T) {
	ports, scan, extraction := newTestPorts()
	scan.sets = testSets()
	extraction.err = errors.New("all 2 subtypes failed")
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, _, err = server.handleExtract(context.Background(), nil, ExtractInput{Client: "acme", Batch: true})
	assert.EqualError(t, err, "all 2 subtypes failed")
}

func TestHandleExtract_SaveError(t *testing.T) {
	ports, scan, extraction := newTestPorts()
	scan.sets = testSets()[:1]
	extraction.results.Set("gift_cards", domain.ExtractionResult{ClientRules: "x", Guidelines: "y"})
	extraction.saveErr = errors.New("disk full")
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, output, err := server.handleExtract(context.Background(), nil, ExtractInput{Client: "acme", Save: true})
	require.NoError(t, err)
	require.Len(t, output.Results, 1)
	assert.Equal(t, "disk full", output.Results[0].Error)
}

func TestHandleAnalyzeFiles(t *testing.T) {
	ports, _, _ := newTestPorts()
	analysis := &mockAnalysisService{report: &domain.AnalysisReport{PairedCount: 2, UnpairedCount: 1}}
	ports.Analysis = analysis
	server, err := NewServer(ports)
	require.NoError(t, err)

	t.Run("paths", func(t *testing.T) {
		_, report, err := server.handleAnalyzeFiles(context.Background(), nil, AnalyzeInput{Paths: []string{"a_EN.txt"}})
		require.NoError(t, err)
		assert.Equal(t, 2, report.PairedCount)
		assert.Equal(t, []string{"a_EN.txt"}, analysis.lastPaths)
	})

	t.Run("cached ids", func(t *testing.T) {
		_, _, err := server.handleAnalyzeFiles(context.Background(), nil, AnalyzeInput{FileIDs: []string{"id-1"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"id-1"}, analysis.lastIDs)
	})

	t.Run("both is rejected", func(t *testing.T) {
		_, _, err := server.handleAnalyzeFiles(context.Background(), nil, AnalyzeInput{
			Paths: []string{"a"}, FileIDs: []string{"b"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("service error", func(t *testing.T) {
		analysis.err = domain.ErrNotFound
		defer func() { analysis.err = nil }()
		_, _, err := server.handleAnalyzeFiles(context.Background(), nil, AnalyzeInput{FileIDs: []string{"gone"}})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
