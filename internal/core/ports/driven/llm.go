package driven

import "context"

// LLMClient sends a single-message completion request to a language model.
//
// Implementations must not retry: a failure is returned to the orchestrator,
// which decides whether the run continues.
type LLMClient interface {
	// Complete sends the prompt as one user message and returns the generated text and usage.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// ModelName returns the default model used when a request names none.
	ModelName() string

	// Close releases resources.
	Close() error
}

// CompletionRequest is one call to the model.
type CompletionRequest struct {
	// Model is the model name. Empty means the client's default.
	Model string

	// MaxTokens caps the generated output.
	MaxTokens int

	// Prompt is the full user message.
	Prompt string
}

// CompletionResponse is the model's answer.
type CompletionResponse struct {
	// Text is the concatenated text content of the answer.
	Text string

	// InputTokens is the prompt usage reported by the API.
	InputTokens int

	// OutputTokens is the completion usage reported by the API.
	OutputTokens int

	// StopReason is the API stop reason, e.g. "end_turn" or "max_tokens".
	StopReason string
}
