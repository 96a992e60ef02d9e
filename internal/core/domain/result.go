package domain

import "iter"

// Placeholder texts returned when debug mode skips the LLM call.
const (
	DebugRulesPlaceholder      = "// Debug mode - no API call made"
	DebugGuidelinesPlaceholder = "# Debug mode - no API call made"
)

// ExtractionResult holds the generated artifacts for one subtype.
type ExtractionResult struct {
	// ClientRules is the generated client_rules.js text.
	ClientRules string `json:"client_rules" yaml:"client_rules"`

	// Guidelines is the generated guidelines.md text.
	Guidelines string `json:"guidelines" yaml:"guidelines"`

	// InputTokens is the prompt usage attributed to this subtype.
	InputTokens int `json:"input_tokens" yaml:"input_tokens"`

	// OutputTokens is the completion usage attributed to this subtype.
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
}

// IsEmpty reports whether neither artifact was produced.
func (r ExtractionResult) IsEmpty() bool {
	return r.ClientRules == "" && r.Guidelines == ""
}

// Results maps subtype names to extraction results in insertion order.
// The zero value is ready to use.
type Results struct {
	keys   []string
	values map[string]ExtractionResult
}

// NewResults creates an empty result mapping.
func NewResults() *Results {
	return &Results{values: make(map[string]ExtractionResult)}
}

// Set stores a result. Replacing an existing subtype keeps its position.
func (r *Results) Set(subtype string, result ExtractionResult) {
	if r.values == nil {
		r.values = make(map[string]ExtractionResult)
	}
	if _, ok := r.values[subtype]; !ok {
		r.keys = append(r.keys, subtype)
	}
	r.values[subtype] = result
}

// Get returns the result for subtype.
func (r *Results) Get(subtype string) (ExtractionResult, bool) {
	if r == nil || r.values == nil {
		return ExtractionResult{}, false
	}
	res, ok := r.values[subtype]
	return res, ok
}

// Keys returns subtypes in insertion order.
func (r *Results) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of stored results.
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// All iterates over subtype/result pairs in insertion order.
func (r *Results) All() iter.Seq2[string, ExtractionResult] {
	return func(yield func(string, ExtractionResult) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

// Usage sums input and output tokens across all results.
func (r *Results) Usage() (input, output int) {
	for _, res := range r.All() {
		input += res.InputTokens
		output += res.OutputTokens
	}
	return input, output
}
