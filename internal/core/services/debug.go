package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/logger"
)

const (
	// debugTimestampLayout names debug artifacts.
	debugTimestampLayout = "20060102_150405"

	// debugOutputRatio estimates output size in analysis reports.
	debugOutputRatio = 0.3

	// individualOverheadPerSubtype approximates the scaffolding repeated
	// by one call per subtype, for the batch savings comparison.
	individualOverheadPerSubtype = 3000

	reportWidth = 80
)

var numbers = message.NewPrinter(language.English)

// TokenSummary is the token block of a debug metadata file.
type TokenSummary struct {
	Total     int              `json:"total"`
	TotalK    float64          `json:"total_k"`
	BySection SectionBreakdown `json:"by_section"`
}

// SubtypeStats describes one subtype of a batch debug run.
type SubtypeStats struct {
	Subtype           string `json:"subtype"`
	DocumentCount     int    `json:"document_count"`
	Paired            int    `json:"paired"`
	Unpaired          int    `json:"unpaired"`
	LanguageSituation string `json:"language_situation"`
	Tokens            int    `json:"tokens"`
}

// DebugMetadata is written next to every debug prompt.
type DebugMetadata struct {
	Timestamp         string         `json:"timestamp"`
	ClientName        string         `json:"client_name"`
	Subtype           string         `json:"subtype,omitempty"`
	IsBatch           bool           `json:"is_batch"`
	DocumentCount     int            `json:"document_count,omitempty"`
	PairedDocuments   int            `json:"paired_documents,omitempty"`
	UnpairedDocuments int            `json:"unpaired_documents,omitempty"`
	LanguageSituation string         `json:"language_situation,omitempty"`
	SubtypeCount      int            `json:"subtype_count,omitempty"`
	Subtypes          []string       `json:"subtypes,omitempty"`
	TotalDocuments    int            `json:"total_documents,omitempty"`
	BySubtype         []SubtypeStats `json:"by_subtype,omitempty"`
	Tokens            TokenSummary   `json:"tokens"`
	DocumentTokens    int            `json:"document_tokens"`
	Model             string         `json:"model"`
}

// DebugWriter saves prompts and token analysis reports instead of calling the model.
type DebugWriter struct {
	store     driven.ArtifactStore
	estimator *Estimator
	now       func() time.Time
}

// NewDebugWriter creates a debug writer rooted at the store's directory.
func NewDebugWriter(store driven.ArtifactStore, estimator *Estimator) *DebugWriter {
	if estimator == nil {
		estimator = NewEstimator(nil)
	}
	return &DebugWriter{store: store, estimator: estimator, now: time.Now}
}

// WriteSingle saves the prompt of one subtype under client/subtype and
// returns the prompt path and its token count.
func (w *DebugWriter) WriteSingle(
	ctx context.Context, set domain.DocumentSet, prompt, model string,
) (string, int, error) {
	ts := w.now().Format(debugTimestampLayout)
	tokens := w.estimator.CountTokens(prompt)

	meta := DebugMetadata{
		Timestamp:         ts,
		ClientName:        set.ClientName,
		Subtype:           set.Subtype,
		DocumentCount:     set.DocumentCount(),
		PairedDocuments:   len(set.PairedDocuments()),
		UnpairedDocuments: len(set.UnpairedDocuments()),
		LanguageSituation: set.LanguageSituation(),
		Tokens:            w.tokenSummary(prompt, tokens),
		DocumentTokens:    set.TotalTokens,
		Model:             model,
	}

	prefix := "prompt_" + ts
	path, err := w.write(ctx, prompt, meta, FormatTokenAnalysis(meta), prefix, set.ClientName, set.Subtype)
	if err != nil {
		return "", 0, err
	}
	logger.Info("Debug files saved: %s, metadata, and analysis", path)
	return path, tokens, nil
}

// WriteBatch saves the prompt covering every subtype under client and
// returns the prompt path and its token count.
func (w *DebugWriter) WriteBatch(
	ctx context.Context, clientName string, sets []domain.DocumentSet, prompt, model string,
) (string, int, error) {
	ts := w.now().Format(debugTimestampLayout)
	tokens := w.estimator.CountTokens(prompt)

	meta := DebugMetadata{
		Timestamp:      ts,
		ClientName:     clientName,
		IsBatch:        true,
		SubtypeCount:   len(sets),
		Subtypes:       domain.Subtypes(sets),
		TotalDocuments: domain.TotalDocuments(sets),
		Tokens:         w.tokenSummary(prompt, tokens),
		DocumentTokens: domain.TotalTokens(sets),
		Model:          model,
	}
	for i := range sets {
		meta.BySubtype = append(meta.BySubtype, SubtypeStats{
			Subtype:           sets[i].Subtype,
			DocumentCount:     sets[i].DocumentCount(),
			Paired:            len(sets[i].PairedDocuments()),
			Unpaired:          len(sets[i].UnpairedDocuments()),
			LanguageSituation: sets[i].LanguageSituation(),
			Tokens:            sets[i].TotalTokens,
		})
	}

	prefix := "prompt_batch_" + ts
	path, err := w.write(ctx, prompt, meta, FormatBatchTokenAnalysis(meta), prefix, clientName)
	if err != nil {
		return "", 0, err
	}
	logger.Info("Batch debug files saved: %s, metadata, and analysis", path)
	return path, tokens, nil
}

func (w *DebugWriter) tokenSummary(prompt string, tokens int) TokenSummary {
	return TokenSummary{
		Total:     tokens,
		TotalK:    math.Round(float64(tokens)/100) / 10,
		BySection: w.estimator.AnalyzeSections(prompt),
	}
}

func (w *DebugWriter) write(
	ctx context.Context, prompt string, meta DebugMetadata, report, prefix string, dir ...string,
) (string, error) {
	if w.store == nil {
		return "", fmt.Errorf("write debug prompt: %w: no artifact store", domain.ErrConfiguration)
	}

	promptName := fmt.Sprintf("%s_%.1fk.md", prefix, float64(meta.Tokens.Total)/1000)
	path, err := w.store.Write(ctx, []byte(prompt), append(dir, promptName)...)
	if err != nil {
		return "", fmt.Errorf("write debug prompt: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode debug metadata: %w", err)
	}
	if _, err := w.store.Write(ctx, data, append(dir, prefix+"_meta.json")...); err != nil {
		return "", fmt.Errorf("write debug metadata: %w", err)
	}

	if _, err := w.store.Write(ctx, []byte(report), append(dir, prefix+"_analysis.txt")...); err != nil {
		return "", fmt.Errorf("write debug analysis: %w", err)
	}
	return path, nil
}

// FormatTokenAnalysis renders the human-readable report of a single subtype prompt.
func FormatTokenAnalysis(meta DebugMetadata) string {
	r := &report{}
	r.heading("PROMPT TOKEN ANALYSIS")
	r.line("Client: %s", meta.ClientName)
	r.line("Subtype: %s", meta.Subtype)
	r.line("Timestamp: %s", meta.Timestamp)
	r.line("Batch Processing: %t", meta.IsBatch)
	r.blank()
	r.subheading("OVERVIEW")
	r.line("Total Documents: %d", meta.DocumentCount)
	r.line("  - Paired: %d", meta.PairedDocuments)
	r.line("  - Unpaired: %d", meta.UnpairedDocuments)
	r.line("Language Situation: %s", meta.LanguageSituation)
	r.blank()
	r.overhead(meta)
	r.sections(meta)
	r.cost(meta)
	r.blank()
	r.rule("=")
	return r.String()
}

// FormatBatchTokenAnalysis renders the report of a batch prompt, including
// the estimated savings over one call per subtype.
func FormatBatchTokenAnalysis(meta DebugMetadata) string {
	r := &report{}
	r.heading("BATCH PROMPT TOKEN ANALYSIS")
	r.line("Client: %s", meta.ClientName)
	r.line("Timestamp: %s", meta.Timestamp)
	r.line("Batch Processing: %d subtypes", meta.SubtypeCount)
	r.blank()
	r.subheading("OVERVIEW")
	r.line("Subtypes: %s", strings.Join(meta.Subtypes, ", "))
	r.line("Total Documents: %d", meta.TotalDocuments)
	r.blank()
	r.line("By Subtype:")
	for _, st := range meta.BySubtype {
		r.line("  - %-20s %2d docs  %6s tokens  (%s)",
			st.Subtype, st.DocumentCount, numbers.Sprintf("%d", st.Tokens), st.LanguageSituation)
	}
	r.blank()
	r.overhead(meta)
	r.sections(meta)
	total := r.cost(meta)
	if meta.SubtypeCount > 0 {
		r.line("Cost per Subtype: %s", domain.FormatCost(total/float64(meta.SubtypeCount)))
	}
	r.blank()

	r.subheading("BATCH EFFICIENCY")
	p := domain.PricingFor(meta.Model)
	individual := float64(meta.DocumentTokens + individualOverheadPerSubtype*meta.SubtypeCount)
	individualCost := individual/1_000_000*p.Input + individual*debugOutputRatio/1_000_000*p.Output
	savings := individualCost - total
	savingsPct := 0.0
	if individualCost > 0 {
		savingsPct = savings / individualCost * 100
	}
	r.line("Batch mode cost: %s", domain.FormatCost(total))
	r.line("Individual mode cost (estimated): %s", domain.FormatCost(individualCost))
	r.line("Savings: %s (%.1f%%)", domain.FormatCost(savings), savingsPct)
	r.blank()
	r.rule("=")
	return r.String()
}

// report accumulates the lines of an analysis report.
type report struct {
	lines []string
}

func (r *report) line(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *report) blank() {
	r.lines = append(r.lines, "")
}

func (r *report) rule(ch string) {
	r.lines = append(r.lines, strings.Repeat(ch, reportWidth))
}

func (r *report) heading(title string) {
	r.rule("=")
	r.lines = append(r.lines, title)
	r.rule("=")
	r.blank()
}

func (r *report) subheading(title string) {
	r.rule("-")
	r.lines = append(r.lines, title)
	r.rule("-")
}

func (r *report) overhead(meta DebugMetadata) {
	total := meta.Tokens.Total
	r.line("Document Content: %s tokens", numbers.Sprintf("%d", meta.DocumentTokens))
	r.line("Total Prompt: %s tokens (%.1fk)", numbers.Sprintf("%d", total), meta.Tokens.TotalK)
	r.blank()

	overhead := total - meta.DocumentTokens
	pct := 0.0
	if total > 0 {
		pct = float64(overhead) / float64(total) * 100
	}
	r.line("Prompt Overhead: %s tokens (%.1f%%)", numbers.Sprintf("%d", overhead), pct)
	r.blank()
}

func (r *report) sections(meta DebugMetadata) {
	r.subheading("TOKEN BREAKDOWN BY SECTION")
	if len(meta.Tokens.BySection) == 0 || meta.Tokens.Total == 0 {
		r.line("(Section analysis not available)")
		r.blank()
		return
	}

	sorted := make(SectionBreakdown, len(meta.Tokens.BySection))
	copy(sorted, meta.Tokens.BySection)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tokens > sorted[j].Tokens })

	for _, s := range sorted {
		pct := float64(s.Tokens) / float64(meta.Tokens.Total) * 100
		bar := strings.Repeat("█", int(pct/2))
		r.line("%-20s %6s tokens  %5.1f%%  %s", s.Name, numbers.Sprintf("%d", s.Tokens), pct, bar)
	}
	r.blank()
}

// cost appends the cost estimate block and returns the estimated total.
func (r *report) cost(meta DebugMetadata) float64 {
	p := domain.PricingFor(meta.Model)
	total := float64(meta.Tokens.Total)
	inputCost := total / 1_000_000 * p.Input
	output := total * debugOutputRatio
	outputCost := output / 1_000_000 * p.Output

	r.subheading("COST ESTIMATE (" + meta.Model + ")")
	r.line("Input: %s tokens × $%g/1M = %s", numbers.Sprintf("%d", meta.Tokens.Total), p.Input, domain.FormatCost(inputCost))
	r.line("Output (est): %s tokens × $%g/1M = %s", numbers.Sprintf("%.0f", output), p.Output, domain.FormatCost(outputCost))
	r.line("Total Estimated Cost: %s", domain.FormatCost(inputCost+outputCost))
	return inputCost + outputCost
}

func (r *report) String() string {
	return strings.Join(r.lines, "\n")
}
