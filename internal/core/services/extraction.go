package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
	"github.com/custodia-labs/cartographer/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// Output ceilings for model calls.
const (
	MaxOutputTokensSingle = 16_000
	MaxOutputTokensBatch  = 32_000
)

// BatchSubtype is the subtype reported for failures of a batch call.
const BatchSubtype = "batch"

// Output artifact names.
const (
	ClientRulesFile = "client_rules.js"
	GuidelinesFile  = "guidelines.md"
)

// ExtractionService sequences prompt building, model calls and response parsing.
// Subtypes are processed one at a time; nothing is retried.
type ExtractionService struct {
	settings  domain.Settings
	builder   *PromptBuilder
	estimator *Estimator
	llm       driven.LLMClient
	debug     *DebugWriter
	outputs   driven.ArtifactStore
	history   driven.HistoryStore
	metrics   driven.Metrics
	now       func() time.Time
}

// NewExtractionService creates an extraction service.
// The llm client may be nil when only debug runs are needed.
func NewExtractionService(
	settings domain.Settings,
	builder *PromptBuilder,
	llm driven.LLMClient,
	debugStore driven.ArtifactStore,
	outputStore driven.ArtifactStore,
) *ExtractionService {
	estimator := builder.estimator
	return &ExtractionService{
		settings:  settings,
		builder:   builder,
		estimator: estimator,
		llm:       llm,
		debug:     NewDebugWriter(debugStore, estimator),
		outputs:   outputStore,
		now:       time.Now,
	}
}

// SetHistoryStore sets the ledger that records every finished subtype.
func (s *ExtractionService) SetHistoryStore(store driven.HistoryStore) {
	s.history = store
}

// SetMetrics sets the metrics sink.
func (s *ExtractionService) SetMetrics(m driven.Metrics) {
	s.metrics = m
}

// BuildPrompt returns the prompt that would be sent for sets.
func (s *ExtractionService) BuildPrompt(clientName string, sets []domain.DocumentSet) (string, error) {
	return s.builder.Build(clientName, sets)
}

// Estimate returns the pre-flight cost estimate for sets.
func (s *ExtractionService) Estimate(sets []domain.DocumentSet, batch bool) domain.CostEstimate {
	return EstimateRun(sets, batch, s.settings.Model)
}

// ExtractOne processes a single subtype.
func (s *ExtractionService) ExtractOne(ctx context.Context, set domain.DocumentSet) (domain.ExtractionResult, error) {
	return s.extractOne(ctx, set, s.settings.DebugMode)
}

// ExtractBatch processes every subtype with one model call.
func (s *ExtractionService) ExtractBatch(ctx context.Context, sets []domain.DocumentSet) (*domain.Results, error) {
	return s.extractBatch(ctx, sets, s.settings.DebugMode)
}

func (s *ExtractionService) extractOne(
	ctx context.Context, set domain.DocumentSet, debug bool,
) (domain.ExtractionResult, error) {
	logger.Info("Starting extraction for %s/%s", set.ClientName, set.Subtype)
	started := s.now()

	prompt, err := s.builder.Build(set.ClientName, []domain.DocumentSet{set})
	if err != nil {
		return domain.ExtractionResult{}, &domain.ExtractionError{Subtype: set.Subtype, Err: err}
	}

	if debug {
		logger.Info("Debug mode enabled - saving prompt instead of calling API")
		path, tokens, err := s.debug.WriteSingle(ctx, set, prompt, s.settings.Model)
		if err != nil {
			return domain.ExtractionResult{}, &domain.ExtractionError{Subtype: set.Subtype, Err: err}
		}
		logger.Info("Prompt saved to %s", path)
		s.observe(domain.ModeDebug, domain.RunDebug, 1, tokens, 0, started)
		return domain.ExtractionResult{
			ClientRules: domain.DebugRulesPlaceholder,
			Guidelines:  domain.DebugGuidelinesPlaceholder,
			InputTokens: tokens,
		}, nil
	}

	resp, err := s.complete(ctx, prompt, MaxOutputTokensSingle)
	if err != nil {
		s.observe(domain.ModeIndividual, domain.RunFailed, 1, 0, 0, started)
		return domain.ExtractionResult{}, &domain.ExtractionError{Subtype: set.Subtype, Err: err}
	}

	rules, guidelines, err := ParseSingleResponse(resp.Text)
	if err != nil {
		logger.Error("Failed to parse response: %v", err)
		s.observe(domain.ModeIndividual, domain.RunFailed, 1, resp.InputTokens, resp.OutputTokens, started)
		return domain.ExtractionResult{}, &domain.ResponseParsingError{Subtype: set.Subtype, Err: err}
	}
	if rules == "" {
		logger.Warn("No client rules found in response for %s", set.Subtype)
	}
	if guidelines == "" {
		logger.Warn("No guidelines found in response for %s", set.Subtype)
	}

	logger.Info("Extraction complete: %d chars rules, %d chars guidelines", len(rules), len(guidelines))
	s.observe(domain.ModeIndividual, domain.RunSucceeded, 1, resp.InputTokens, resp.OutputTokens, started)

	return domain.ExtractionResult{
		ClientRules:  rules,
		Guidelines:   guidelines,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

func (s *ExtractionService) extractBatch(
	ctx context.Context, sets []domain.DocumentSet, debug bool,
) (*domain.Results, error) {
	if len(sets) == 0 {
		return domain.NewResults(), nil
	}

	clientName := sets[0].ClientName
	n := len(sets)
	logger.Info("Starting batch extraction for %s with %d subtypes", clientName, n)
	started := s.now()

	prompt, err := s.builder.Build(clientName, sets)
	if err != nil {
		return nil, &domain.ExtractionError{Subtype: BatchSubtype, Err: err}
	}

	if debug {
		logger.Info("Debug mode enabled - saving batch prompt instead of calling API")
		path, tokens, err := s.debug.WriteBatch(ctx, clientName, sets, prompt, s.settings.Model)
		if err != nil {
			return nil, &domain.ExtractionError{Subtype: BatchSubtype, Err: err}
		}
		logger.Info("Batch prompt saved to %s", path)
		s.observe(domain.ModeDebug, domain.RunDebug, n, tokens, 0, started)

		results := domain.NewResults()
		for i := range sets {
			results.Set(sets[i].Subtype, domain.ExtractionResult{
				ClientRules: domain.DebugRulesPlaceholder,
				Guidelines:  domain.DebugGuidelinesPlaceholder,
				InputTokens: tokens / n,
			})
		}
		return results, nil
	}

	resp, err := s.complete(ctx, prompt, MaxOutputTokensBatch)
	if err != nil {
		s.observe(domain.ModeBatch, domain.RunFailed, n, 0, 0, started)
		return nil, &domain.ExtractionError{Subtype: BatchSubtype, Err: err}
	}

	parsed, err := ParseBatchResponse(resp.Text, sets)
	if err != nil {
		logger.Error("Failed to parse batch response: %v", err)
		s.observe(domain.ModeBatch, domain.RunFailed, n, resp.InputTokens, resp.OutputTokens, started)
		return nil, &domain.ResponseParsingError{Subtype: BatchSubtype, Err: err}
	}

	inPer, outPer := resp.InputTokens/n, resp.OutputTokens/n
	results := domain.NewResults()
	for subtype, res := range parsed.All() {
		res.InputTokens, res.OutputTokens = inPer, outPer
		results.Set(subtype, res)
	}

	logger.Info("Batch extraction complete for %d subtypes", results.Len())
	s.observe(domain.ModeBatch, domain.RunSucceeded, n, resp.InputTokens, resp.OutputTokens, started)
	return results, nil
}

// complete issues one model call. The call is detached from ctx
// cancellation so it runs to completion or failure.
func (s *ExtractionService) complete(ctx context.Context, prompt string, maxTokens int) (*driven.CompletionResponse, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	logger.Debug("Calling model %s (max %d output tokens)", s.settings.Model, maxTokens)
	resp, err := s.llm.Complete(context.WithoutCancel(ctx), driven.CompletionRequest{
		Model:     s.settings.Model,
		MaxTokens: maxTokens,
		Prompt:    prompt,
	})
	if err != nil {
		logger.Error("Model API error: %v", err)
		return nil, err
	}
	logger.Debug("API response received: %d input, %d output tokens", resp.InputTokens, resp.OutputTokens)
	return resp, nil
}

// Run processes req, streaming events to sink. Individual mode reports a
// failed subtype as an error event and continues with the next one.
// Cancellation of ctx is checked between subtypes. The returned results
// hold every successful subtype; an error is returned when none succeeded.
func (s *ExtractionService) Run(
	ctx context.Context, req domain.ExtractionRequest, sink driving.EventSink,
) (*domain.Results, error) {
	if sink == nil {
		sink = func(domain.ExtractionEvent) {}
	}
	if len(req.Sets) == 0 {
		return nil, &domain.NoDocumentsFoundError{Path: req.ClientName}
	}

	debug := req.Debug || s.settings.DebugMode
	if !debug && s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	runID := uuid.NewString()
	total := len(req.Sets)
	mode := domain.ModeIndividual
	switch {
	case debug:
		mode = domain.ModeDebug
	case req.Batch && total > 1:
		mode = domain.ModeBatch
	}

	sink(domain.ExtractionEvent{
		Type:    domain.EventStarted,
		RunID:   runID,
		Total:   total,
		Message: fmt.Sprintf("Extracting %d subtypes for %s (%s)", total, req.ClientName, mode),
	})

	results := domain.NewResults()
	totals := &domain.RunTotals{Subtypes: total}
	var lastErr error

	if req.Batch && total > 1 {
		sink(domain.ExtractionEvent{
			Type: domain.EventProgress, RunID: runID, Subtype: BatchSubtype, Index: 1, Total: total,
			Message: fmt.Sprintf("Processing %d subtypes in one call", total),
		})

		batch, err := s.extractBatch(ctx, req.Sets, debug)
		if err != nil {
			lastErr = err
			totals.Failed = total
			for i := range req.Sets {
				s.record(ctx, runID, mode, req.Sets[i], domain.ExtractionResult{}, err)
			}
			sink(domain.ExtractionEvent{Type: domain.EventError, RunID: runID, Subtype: BatchSubtype, Total: total, Err: err})
		} else {
			for i := range req.Sets {
				set := req.Sets[i]
				res, _ := batch.Get(set.Subtype)
				results.Set(set.Subtype, res)
				s.record(ctx, runID, mode, set, res, nil)
				totals.Succeeded++
				sink(domain.ExtractionEvent{
					Type: domain.EventSubtypeComplete, RunID: runID, Subtype: set.Subtype,
					Index: i + 1, Total: total, Result: &res,
				})
			}
		}
	} else {
		for i := range req.Sets {
			set := req.Sets[i]
			if err := ctx.Err(); err != nil {
				lastErr = err
				totals.Failed += total - i
				sink(domain.ExtractionEvent{Type: domain.EventError, RunID: runID, Subtype: set.Subtype, Index: i + 1, Total: total, Err: err})
				break
			}

			sink(domain.ExtractionEvent{
				Type: domain.EventProgress, RunID: runID, Subtype: set.Subtype, Index: i + 1, Total: total,
				Message: fmt.Sprintf("Processing %s (%d/%d)", set.Subtype, i+1, total),
			})

			res, err := s.extractOne(ctx, set, debug)
			s.record(ctx, runID, mode, set, res, err)
			if err != nil {
				lastErr = err
				totals.Failed++
				sink(domain.ExtractionEvent{Type: domain.EventError, RunID: runID, Subtype: set.Subtype, Index: i + 1, Total: total, Err: err})
				continue
			}

			results.Set(set.Subtype, res)
			totals.Succeeded++
			sink(domain.ExtractionEvent{
				Type: domain.EventSubtypeComplete, RunID: runID, Subtype: set.Subtype,
				Index: i + 1, Total: total, Result: &res,
			})
		}
	}

	totals.InputTokens, totals.OutputTokens = results.Usage()
	if !debug {
		totals.Cost = domain.EstimateCost(totals.InputTokens, totals.OutputTokens, s.settings.Model, false)
	}
	sink(domain.ExtractionEvent{Type: domain.EventComplete, RunID: runID, Total: total, Totals: totals})

	if totals.Succeeded == 0 && lastErr != nil {
		return results, fmt.Errorf("all %d subtypes failed: %w", total, lastErr)
	}
	if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
		return results, lastErr
	}
	return results, nil
}

// Save writes client_rules.js and guidelines.md under client/subtype.
func (s *ExtractionService) Save(
	ctx context.Context, client, subtype string, result domain.ExtractionResult,
) ([]string, error) {
	if s.outputs == nil {
		return nil, fmt.Errorf("save results: %w: no output store", domain.ErrConfiguration)
	}

	rulesPath, err := s.outputs.Write(ctx, []byte(result.ClientRules), client, subtype, ClientRulesFile)
	if err != nil {
		return nil, fmt.Errorf("save client rules: %w", err)
	}
	guidelinesPath, err := s.outputs.Write(ctx, []byte(result.Guidelines), client, subtype, GuidelinesFile)
	if err != nil {
		return nil, fmt.Errorf("save guidelines: %w", err)
	}

	logger.Info("Saved results for %s/%s", client, subtype)
	return []string{rulesPath, guidelinesPath}, nil
}

// record appends one ledger row. Ledger failures are logged, never returned.
func (s *ExtractionService) record(
	ctx context.Context, runID string, mode domain.ProcessingMode,
	set domain.DocumentSet, res domain.ExtractionResult, err error,
) {
	if s.history == nil {
		return
	}

	rec := domain.ExtractionRecord{
		ID:           uuid.NewString(),
		RunID:        runID,
		ClientName:   set.ClientName,
		Subtype:      set.Subtype,
		Mode:         mode,
		Model:        s.settings.Model,
		Documents:    set.DocumentCount(),
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
		Status:       domain.RunSucceeded,
		CreatedAt:    s.now().UTC(),
	}
	switch {
	case err != nil:
		rec.Status = domain.RunFailed
		rec.Error = err.Error()
	case mode == domain.ModeDebug:
		rec.Status = domain.RunDebug
	default:
		rec.Cost = domain.EstimateCost(res.InputTokens, res.OutputTokens, s.settings.Model, false)
	}

	if recErr := s.history.Record(context.WithoutCancel(ctx), rec); recErr != nil {
		logger.Warn("Failed to record extraction history for %s: %v", set.Subtype, recErr)
	}
}

func (s *ExtractionService) observe(
	mode domain.ProcessingMode, status domain.RunStatus, subtypes, in, out int, started time.Time,
) {
	if s.metrics == nil {
		return
	}
	obs := driven.ExtractionObservation{
		Mode:         mode.String(),
		Model:        s.settings.Model,
		Status:       string(status),
		Subtypes:     subtypes,
		InputTokens:  in,
		OutputTokens: out,
		Duration:     s.now().Sub(started),
	}
	if mode != domain.ModeDebug {
		obs.Cost = domain.EstimateCost(in, out, s.settings.Model, false)
	}
	s.metrics.ObserveExtraction(obs)
}
