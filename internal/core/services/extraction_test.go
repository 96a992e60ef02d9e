package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cartographer/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// mockLLM is a scripted LLM client.
type mockLLM struct {
	mu       sync.Mutex
	complete func(req driven.CompletionRequest) (*driven.CompletionResponse, error)
	calls    []driven.CompletionRequest
}

func (m *mockLLM) Complete(_ context.Context, req driven.CompletionRequest) (*driven.CompletionResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	return m.complete(req)
}

func (m *mockLLM) ModelName() string { return domain.DefaultModel }

func (m *mockLLM) Close() error { return nil }

func replyWith(text string, in, out int) *mockLLM {
	return &mockLLM{complete: func(driven.CompletionRequest) (*driven.CompletionResponse, error) {
		return &driven.CompletionResponse{Text: text, InputTokens: in, OutputTokens: out}, nil
	}}
}

// recordingHistory collects ledger rows.
type recordingHistory struct {
	mu      sync.Mutex
	records []domain.ExtractionRecord
}

func (h *recordingHistory) Record(_ context.Context, rec domain.ExtractionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return nil
}

func (h *recordingHistory) List(context.Context, string, int) ([]domain.ExtractionRecord, error) {
	return h.records, nil
}

// recordingMetrics collects observations.
type recordingMetrics struct {
	observations []driven.ExtractionObservation
}

func (m *recordingMetrics) ObserveExtraction(obs driven.ExtractionObservation) {
	m.observations = append(m.observations, obs)
}

const singleAnswer = "## SUBTYPE: cards\n\n### CLIENT_RULES\n\n```javascript\nconst RULES = {};\n```\n\n### GUIDELINES\n\nBe friendly."

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestExtraction(llm driven.LLMClient, debug bool) (*ExtractionService, *recordingArtifacts, *recordingArtifacts) {
	settings := domain.DefaultSettings()
	settings.AnthropicAPIKey = "sk-test"
	settings.DebugMode = debug

	debugStore := newRecordingArtifacts()
	outputStore := newRecordingArtifacts()
	builder := NewPromptBuilder(nil, defaultTestTemplates(), NewEstimator(wordTokenizer{}))
	svc := NewExtractionService(settings, builder, llm, debugStore, outputStore)
	svc.now = func() time.Time { return fixedNow }
	svc.debug.now = svc.now
	return svc, debugStore, outputStore
}

func TestExtractionService_ExtractOne(t *testing.T) {
	llm := replyWith(singleAnswer, 1200, 340)
	svc, _, _ := newTestExtraction(llm, false)

	res, err := svc.ExtractOne(context.Background(), pairedSet("cards"))

	require.NoError(t, err)
	assert.Equal(t, "const RULES = {};", res.ClientRules)
	assert.Equal(t, "Be friendly.", res.Guidelines)
	assert.Equal(t, 1200, res.InputTokens)
	assert.Equal(t, 340, res.OutputTokens)

	require.Len(t, llm.calls, 1)
	assert.Equal(t, MaxOutputTokensSingle, llm.calls[0].MaxTokens)
	assert.Equal(t, domain.DefaultModel, llm.calls[0].Model)
	assert.Contains(t, llm.calls[0].Prompt, "SUBTYPE: cards")
}

func TestExtractionService_ExtractOne_EmptyAnswerIsNotAnError(t *testing.T) {
	svc, _, _ := newTestExtraction(replyWith("Sorry.", 10, 2), false)

	res, err := svc.ExtractOne(context.Background(), pairedSet("cards"))

	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
	assert.Equal(t, 10, res.InputTokens)
}

func TestExtractionService_ExtractOne_APIError(t *testing.T) {
	cause := errors.New("overloaded")
	llm := &mockLLM{complete: func(driven.CompletionRequest) (*driven.CompletionResponse, error) {
		return nil, cause
	}}
	svc, _, _ := newTestExtraction(llm, false)

	_, err := svc.ExtractOne(context.Background(), pairedSet("cards"))

	require.Error(t, err)
	var extErr *domain.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "cards", extErr.Subtype)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrResponseParsing)
}

func TestExtractionService_ExtractOne_BlankAnswer(t *testing.T) {
	svc, _, _ := newTestExtraction(replyWith("   ", 40, 0), false)
	metrics := &recordingMetrics{}
	svc.SetMetrics(metrics)

	_, err := svc.ExtractOne(context.Background(), pairedSet("cards"))

	var parseErr *domain.ResponseParsingError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "cards", parseErr.Subtype)
	assert.ErrorIs(t, err, domain.ErrResponseParsing)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	require.Len(t, metrics.observations, 1)
	assert.Equal(t, string(domain.RunFailed), metrics.observations[0].Status)
	assert.Equal(t, 40, metrics.observations[0].InputTokens)
}

func TestExtractionService_ExtractOne_NoClient(t *testing.T) {
	svc, _, _ := newTestExtraction(nil, false)

	_, err := svc.ExtractOne(context.Background(), pairedSet("cards"))

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtractionService_ExtractOne_Debug(t *testing.T) {
	llm := replyWith(singleAnswer, 1, 1)
	svc, debugStore, _ := newTestExtraction(llm, true)
	set := pairedSet("cards")

	res, err := svc.ExtractOne(context.Background(), set)

	require.NoError(t, err)
	assert.Empty(t, llm.calls)
	assert.Equal(t, domain.DebugRulesPlaceholder, res.ClientRules)
	assert.Equal(t, domain.DebugGuidelinesPlaceholder, res.Guidelines)
	assert.Zero(t, res.OutputTokens)

	prompt, err := svc.BuildPrompt("acme", []domain.DocumentSet{set})
	require.NoError(t, err)
	assert.Equal(t, svc.estimator.CountTokens(prompt), res.InputTokens)

	names := debugStore.names()
	require.Len(t, names, 3)

	meta, ok := debugStore.get("acme", "cards", "prompt_20260102_030405_meta.json")
	require.True(t, ok)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(meta), &decoded))
	assert.Equal(t, "cards", decoded["subtype"])
	assert.Equal(t, false, decoded["is_batch"])
	assert.EqualValues(t, 4, decoded["document_count"])
	assert.EqualValues(t, 1, decoded["paired_documents"])
	assert.EqualValues(t, 2, decoded["unpaired_documents"])
	assert.Equal(t, "EN → DE (paired)", decoded["language_situation"])
	tokens := decoded["tokens"].(map[string]any)
	assert.EqualValues(t, res.InputTokens, tokens["total"])
	assert.Contains(t, tokens["by_section"], SectionDocuments)

	report, ok := debugStore.get("acme", "cards", "prompt_20260102_030405_analysis.txt")
	require.True(t, ok)
	assert.Contains(t, report, "PROMPT TOKEN ANALYSIS")
	assert.Contains(t, report, "Subtype: cards")
	assert.Contains(t, report, "TOKEN BREAKDOWN BY SECTION")

	var promptFile string
	for _, n := range names {
		if strings.HasSuffix(n, "k.md") {
			promptFile = n
		}
	}
	require.NotEmpty(t, promptFile)
	assert.Contains(t, promptFile, "prompt_20260102_030405_")
	saved, _ := debugStore.get(promptFile)
	assert.Equal(t, prompt, saved)
}

func threeSets() []domain.DocumentSet {
	return []domain.DocumentSet{unpairedSet("a"), unpairedSet("b"), unpairedSet("c")}
}

const threeAnswer = "## SUBTYPE: a\n### CLIENT_RULES\n```javascript\nA\n```\n### GUIDELINES\nga\n---\n" +
	"## SUBTYPE: b\n### CLIENT_RULES\n```javascript\nB\n```\n### GUIDELINES\ngb\n---\n" +
	"## SUBTYPE: c\n### CLIENT_RULES\n```javascript\nC\n```\n### GUIDELINES\ngc\n"

func TestExtractionService_ExtractBatch_SplitsUsage(t *testing.T) {
	llm := replyWith(threeAnswer, 300, 90)
	svc, _, _ := newTestExtraction(llm, false)

	results, err := svc.ExtractBatch(context.Background(), threeSets())

	require.NoError(t, err)
	require.Len(t, llm.calls, 1)
	assert.Equal(t, MaxOutputTokensBatch, llm.calls[0].MaxTokens)
	assert.Equal(t, []string{"a", "b", "c"}, results.Keys())
	for _, key := range results.Keys() {
		res, _ := results.Get(key)
		assert.Equal(t, 100, res.InputTokens)
		assert.Equal(t, 30, res.OutputTokens)
		assert.Equal(t, strings.ToUpper(key), res.ClientRules)
		assert.Equal(t, "g"+key, res.Guidelines)
	}
}

func TestExtractionService_ExtractBatch_DropsRemainder(t *testing.T) {
	svc, _, _ := newTestExtraction(replyWith(threeAnswer, 301, 92), false)

	results, err := svc.ExtractBatch(context.Background(), threeSets())

	require.NoError(t, err)
	in, out := results.Usage()
	assert.Equal(t, 300, in)
	assert.Equal(t, 90, out)
}

func TestExtractionService_ExtractBatch_APIError(t *testing.T) {
	llm := &mockLLM{complete: func(driven.CompletionRequest) (*driven.CompletionResponse, error) {
		return nil, domain.ErrRateLimited
	}}
	svc, _, _ := newTestExtraction(llm, false)

	_, err := svc.ExtractBatch(context.Background(), threeSets())

	var extErr *domain.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, BatchSubtype, extErr.Subtype)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestExtractionService_ExtractBatch_BlankAnswer(t *testing.T) {
	svc, _, _ := newTestExtraction(replyWith("", 300, 0), false)

	results, err := svc.ExtractBatch(context.Background(), threeSets())

	var parseErr *domain.ResponseParsingError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, BatchSubtype, parseErr.Subtype)
	assert.ErrorIs(t, err, domain.ErrResponseParsing)
	assert.Nil(t, results)
}

func TestExtractionService_ExtractBatch_Empty(t *testing.T) {
	llm := replyWith("", 0, 0)
	svc, _, _ := newTestExtraction(llm, false)

	results, err := svc.ExtractBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, results.Len())
	assert.Empty(t, llm.calls)
}

func TestExtractionService_ExtractBatch_Debug(t *testing.T) {
	svc, debugStore, _ := newTestExtraction(nil, true)
	sets := threeSets()

	results, err := svc.ExtractBatch(context.Background(), sets)
	require.NoError(t, err)

	prompt, err := svc.BuildPrompt("acme", sets)
	require.NoError(t, err)
	perSubtype := svc.estimator.CountTokens(prompt) / 3

	for _, key := range results.Keys() {
		res, _ := results.Get(key)
		assert.Equal(t, perSubtype, res.InputTokens)
		assert.Zero(t, res.OutputTokens)
		assert.Equal(t, domain.DebugRulesPlaceholder, res.ClientRules)
	}

	report, ok := debugStore.get("acme", "prompt_batch_20260102_030405_analysis.txt")
	require.True(t, ok)
	assert.Contains(t, report, "BATCH PROMPT TOKEN ANALYSIS")
	assert.Contains(t, report, "Batch Processing: 3 subtypes")
	assert.Contains(t, report, "BATCH EFFICIENCY")
	assert.Contains(t, report, "Cost per Subtype:")

	meta, ok := debugStore.get("acme", "prompt_batch_20260102_030405_meta.json")
	require.True(t, ok)
	var decoded DebugMetadata
	require.NoError(t, json.Unmarshal([]byte(meta), &decoded))
	assert.True(t, decoded.IsBatch)
	assert.Equal(t, []string{"a", "b", "c"}, decoded.Subtypes)
	assert.Len(t, decoded.BySubtype, 3)
}

func TestExtractionService_Run_IndividualContinuesAfterFailure(t *testing.T) {
	calls := 0
	llm := &mockLLM{complete: func(driven.CompletionRequest) (*driven.CompletionResponse, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("boom")
		}
		return &driven.CompletionResponse{Text: "### CLIENT_RULES\n```javascript\nok\n```\n### GUIDELINES\nfine", InputTokens: 1000, OutputTokens: 100}, nil
	}}
	svc, _, _ := newTestExtraction(llm, false)
	history := &recordingHistory{}
	metrics := &recordingMetrics{}
	svc.SetHistoryStore(history)
	svc.SetMetrics(metrics)

	var events []domain.ExtractionEvent
	results, err := svc.Run(context.Background(), domain.ExtractionRequest{ClientName: "acme", Sets: threeSets()},
		func(e domain.ExtractionEvent) { events = append(events, e) })

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, results.Keys())

	var types []domain.EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []domain.EventType{
		domain.EventStarted,
		domain.EventProgress, domain.EventSubtypeComplete,
		domain.EventProgress, domain.EventError,
		domain.EventProgress, domain.EventSubtypeComplete,
		domain.EventComplete,
	}, types)

	failed := events[4]
	assert.Equal(t, "b", failed.Subtype)
	assert.ErrorIs(t, failed.Err, domain.ErrExtraction)

	totals := events[len(events)-1].Totals
	require.NotNil(t, totals)
	assert.Equal(t, 2, totals.Succeeded)
	assert.Equal(t, 1, totals.Failed)
	assert.Equal(t, 2000, totals.InputTokens)
	assert.Equal(t, 200, totals.OutputTokens)
	assert.InDelta(t, domain.EstimateCost(2000, 200, domain.DefaultModel, false), totals.Cost, 1e-9)

	require.Len(t, history.records, 3)
	assert.Equal(t, domain.RunSucceeded, history.records[0].Status)
	assert.Equal(t, domain.RunFailed, history.records[1].Status)
	assert.Contains(t, history.records[1].Error, "boom")
	assert.Equal(t, events[0].RunID, history.records[2].RunID)

	assert.Len(t, metrics.observations, 3)
}

func TestExtractionService_Run_Batch(t *testing.T) {
	llm := replyWith(threeAnswer, 300, 90)
	svc, _, _ := newTestExtraction(llm, false)

	var completed int
	results, err := svc.Run(context.Background(), domain.ExtractionRequest{ClientName: "acme", Sets: threeSets(), Batch: true},
		func(e domain.ExtractionEvent) {
			if e.Type == domain.EventSubtypeComplete {
				completed++
				require.NotNil(t, e.Result)
			}
		})

	require.NoError(t, err)
	assert.Len(t, llm.calls, 1)
	assert.Equal(t, 3, completed)
	assert.Equal(t, 3, results.Len())
}

func TestExtractionService_Run_AllFailed(t *testing.T) {
	llm := &mockLLM{complete: func(driven.CompletionRequest) (*driven.CompletionResponse, error) {
		return nil, domain.ErrServer
	}}
	svc, _, _ := newTestExtraction(llm, false)

	_, err := svc.Run(context.Background(), domain.ExtractionRequest{ClientName: "acme", Sets: threeSets(), Batch: true}, nil)

	assert.ErrorIs(t, err, domain.ErrServer)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtractionService_Run_CancelledBetweenSubtypes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	llm := &mockLLM{}
	llm.complete = func(driven.CompletionRequest) (*driven.CompletionResponse, error) {
		cancel()
		return &driven.CompletionResponse{Text: singleAnswer, InputTokens: 1, OutputTokens: 1}, nil
	}
	svc, _, _ := newTestExtraction(llm, false)

	results, err := svc.Run(ctx, domain.ExtractionRequest{ClientName: "acme", Sets: threeSets()}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, llm.calls, 1)
	assert.Equal(t, 1, results.Len())
}

func TestExtractionService_Run_Validation(t *testing.T) {
	svc, _, _ := newTestExtraction(nil, false)

	_, err := svc.Run(context.Background(), domain.ExtractionRequest{ClientName: "acme"}, nil)
	assert.ErrorIs(t, err, domain.ErrNoDocuments)

	_, err = svc.Run(context.Background(), domain.ExtractionRequest{ClientName: "acme", Sets: threeSets()}, nil)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	results, err := svc.Run(context.Background(), domain.ExtractionRequest{ClientName: "acme", Sets: threeSets(), Debug: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, results.Len())
}

func TestExtractionService_Save(t *testing.T) {
	svc, _, outputs := newTestExtraction(nil, false)

	paths, err := svc.Save(context.Background(), "acme", "cards",
		domain.ExtractionResult{ClientRules: "rules", Guidelines: "guide"})

	require.NoError(t, err)
	require.Len(t, paths, 2)
	rules, _ := outputs.get("acme", "cards", "client_rules.js")
	guide, _ := outputs.get("acme", "cards", "guidelines.md")
	assert.Equal(t, "rules", rules)
	assert.Equal(t, "guide", guide)
}

func TestExtractionService_Save_MemoryStore(t *testing.T) {
	estimator := NewEstimator(wordTokenizer{})
	builder := NewPromptBuilder(nil, mapTemplates{}, estimator)
	outputs := memory.NewArtifactStore("output")
	svc := NewExtractionService(domain.DefaultSettings(), builder, nil, memory.NewArtifactStore("debug"), outputs)

	paths, err := svc.Save(context.Background(), "acme", "emails",
		domain.ExtractionResult{ClientRules: "export default {}", Guidelines: "# Emails"})

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("output", "acme", "emails", "client_rules.js"),
		filepath.Join("output", "acme", "emails", "guidelines.md"),
	}, paths)
	data, ok := outputs.Read(paths[1])
	require.True(t, ok)
	assert.Equal(t, "# Emails", string(data))
}

func TestExtractionService_Estimate(t *testing.T) {
	svc, _, _ := newTestExtraction(nil, false)

	est := svc.Estimate(threeSets(), true)

	assert.Equal(t, domain.ModeBatch, est.Mode)
	assert.Equal(t, domain.DefaultModel, est.Model)
}

func TestFormatTokenAnalysis(t *testing.T) {
	meta := DebugMetadata{
		ClientName:     "acme",
		Subtype:        "cards",
		Timestamp:      "20260102_030405",
		DocumentCount:  2,
		Tokens:         TokenSummary{Total: 12000, TotalK: 12, BySection: SectionBreakdown{{Name: SectionDocuments, Tokens: 6000}, {Name: SectionMission, Tokens: 6000}}},
		DocumentTokens: 5000,
		Model:          domain.DefaultModel,
	}

	report := FormatTokenAnalysis(meta)

	assert.Contains(t, report, "Total Prompt: 12,000 tokens (12.0k)")
	assert.Contains(t, report, "Prompt Overhead: 7,000 tokens (58.3%)")
	assert.Contains(t, report, "Documents             6,000 tokens   50.0%  "+strings.Repeat("█", 25))
	assert.Contains(t, report, "Input: 12,000 tokens × $5/1M = $0.0600")
	assert.Contains(t, report, "Output (est): 3,600 tokens × $25/1M = $0.0900")
	assert.Contains(t, report, "Total Estimated Cost: $0.1500")
	assert.True(t, strings.HasPrefix(report, strings.Repeat("=", 80)+"\nPROMPT TOKEN ANALYSIS\n"))
}
