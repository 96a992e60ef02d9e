package services

import (
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Token budget constants.
const (
	// TokenCorrectionFactor scales the approximate BPE count up to the
	// model's tokenizer, which historically produces more tokens.
	TokenCorrectionFactor = 1.2

	// PromptBaseOverhead is the estimated size of the prompt scaffolding.
	PromptBaseOverhead = 4000

	// PerDocumentOverhead covers separators and labels around each document.
	PerDocumentOverhead = 50

	// PromptTokenWarningThreshold is the size above which a warning is logged.
	PromptTokenWarningThreshold = 150_000

	// OutputTokenRatio is the expected output size relative to the input.
	OutputTokenRatio = 0.5

	// charsPerToken approximates tokens when no tokenizer is configured.
	charsPerToken = 4

	// maxSegmentRunes bounds a counted segment so long unbroken runs
	// stay cheap to count.
	maxSegmentRunes = 32
)

// Estimator counts tokens and prices extraction runs.
type Estimator struct {
	tokenizer driven.Tokenizer
}

// NewEstimator creates an estimator. A nil tokenizer falls back to
// one token per four characters.
func NewEstimator(tokenizer driven.Tokenizer) *Estimator {
	return &Estimator{tokenizer: tokenizer}
}

// CountTokens returns the corrected token estimate of text, rounded up.
// Extending text never lowers the estimate.
func (e *Estimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	var raw int
	if e != nil && e.tokenizer != nil {
		raw = e.countSegments(text)
	} else {
		raw = (utf8.RuneCountInString(text) + charsPerToken - 1) / charsPerToken
	}
	return int(math.Ceil(float64(raw) * TokenCorrectionFactor))
}

// countSegments sums the tokenizer count of each segment of text. A
// segment is a whitespace run plus the word after it, split every
// maxSegmentRunes runes. BPE can encode a finished word in fewer tokens
// than one of its prefixes, so each segment counts as the largest count
// over its own prefixes. A prefix of text then splits into the same
// leading segments plus a prefix of one more, which keeps the sum
// monotone.
func (e *Estimator) countSegments(text string) int {
	counted := make(map[string]int)
	total := 0
	for _, seg := range splitSegments(text) {
		n, ok := counted[seg]
		if !ok {
			n = e.prefixMax(seg)
			counted[seg] = n
		}
		total += n
	}
	return total
}

func (e *Estimator) prefixMax(seg string) int {
	best := 0
	for i := range seg {
		if i > 0 {
			best = max(best, e.tokenizer.Count(seg[:i]))
		}
	}
	return max(best, e.tokenizer.Count(seg))
}

// splitSegments cuts text before each whitespace run that follows a
// word, and after every maxSegmentRunes runes of one segment. Each cut
// depends only on the text before it.
func splitSegments(text string) []string {
	var segs []string
	start, runes := 0, 0
	prevSpace := true
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i > start && (runes == maxSegmentRunes || (space && !prevSpace)) {
			segs = append(segs, text[start:i])
			start, runes = i, 0
		}
		runes++
		prevSpace = space
	}
	return append(segs, text[start:])
}

// EstimatePromptTokens estimates the prompt size for sets without building it.
func EstimatePromptTokens(sets []domain.DocumentSet) int {
	return PromptBaseOverhead + domain.TotalTokens(sets) + PerDocumentOverhead*domain.TotalDocuments(sets)
}

// EstimateRun prices an extraction of sets. A batch run is one prompt;
// individual runs are one prompt per set. Output is estimated from the
// input and the cost is rounded up to the next nickel.
func EstimateRun(sets []domain.DocumentSet, batch bool, model string) domain.CostEstimate {
	est := domain.CostEstimate{Mode: domain.ModeIndividual, Model: model}
	if len(sets) == 0 {
		return est
	}

	if batch && len(sets) > 1 {
		est.Mode = domain.ModeBatch
		est.Calls = 1
		est.InputTokens = EstimatePromptTokens(sets)
	} else {
		est.Calls = len(sets)
		for i := range sets {
			est.InputTokens += EstimatePromptTokens(sets[i : i+1])
		}
	}

	est.OutputTokens = int(float64(est.InputTokens) * OutputTokenRatio)
	est.Cost = domain.EstimateCost(est.InputTokens, est.OutputTokens, model, true)
	return est
}
