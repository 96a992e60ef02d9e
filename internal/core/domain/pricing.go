package domain

import (
	"fmt"
	"math"
)

// DefaultModel is the model used when settings do not name one.
const DefaultModel = "claude-opus-4-5-20251101"

// ModelPricing is the price in USD per million tokens.
type ModelPricing struct {
	Input  float64
	Output float64
}

// Pricing lists known model prices. Unknown models fall back to DefaultModel.
var Pricing = map[string]ModelPricing{
	"claude-opus-4-5-20251101": {Input: 5.00, Output: 25.00},
	"claude-sonnet-4-5":        {Input: 3.00, Output: 15.00},
	"claude-sonnet-4-20250514": {Input: 3.00, Output: 15.00},
}

// PricingFor returns the price table entry for model, falling back to the default model.
func PricingFor(model string) ModelPricing {
	if p, ok := Pricing[model]; ok {
		return p
	}
	return Pricing[DefaultModel]
}

// EstimateCost converts token counts to USD. With roundToNickel the
// result is rounded up to the next multiple of 0.05.
func EstimateCost(inputTokens, outputTokens int, model string, roundToNickel bool) float64 {
	p := PricingFor(model)
	cost := float64(inputTokens)/1_000_000*p.Input + float64(outputTokens)/1_000_000*p.Output
	if roundToNickel {
		return RoundUpToNickel(cost)
	}
	return cost
}

// RoundUpToNickel returns the smallest multiple of 0.05 not below v.
// Values within float noise of a multiple are kept as that multiple.
func RoundUpToNickel(v float64) float64 {
	if v <= 0 {
		return 0
	}
	cents := math.Round(v*100*1e6) / 1e6
	nickels := math.Ceil(cents / 5)
	return nickels * 5 / 100
}

// FormatCost renders a USD amount with four decimals.
func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.4f", cost)
}

// FormatTokens renders a token count as 1.2M, 3.4k or a plain number.
func FormatTokens(tokens int) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fk", float64(tokens)/1_000)
	default:
		return fmt.Sprintf("%d", tokens)
	}
}

// ProcessingMode names how subtypes are sent to the model.
type ProcessingMode string

// Processing modes.
const (
	// ModeIndividual issues one call per subtype.
	ModeIndividual ProcessingMode = "individual"

	// ModeBatch issues one call covering every subtype.
	ModeBatch ProcessingMode = "batch"

	// ModeDebug writes prompts to disk without calling the model.
	ModeDebug ProcessingMode = "debug"
)

// String returns the string representation.
func (m ProcessingMode) String() string {
	return string(m)
}

// CostEstimate is a pre-flight estimate for an extraction run.
type CostEstimate struct {
	Mode         ProcessingMode `json:"mode" yaml:"mode"`
	Calls        int            `json:"calls" yaml:"calls"`
	InputTokens  int            `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int            `json:"output_tokens" yaml:"output_tokens"`
	Cost         float64        `json:"cost" yaml:"cost"`
	Model        string         `json:"model" yaml:"model"`
}
