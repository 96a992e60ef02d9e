// Package anthropic provides an LLM client adapter using the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.LLMClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 10 * time.Minute
	DefaultMaxTokens = 16_000
)

// Config holds configuration for the Anthropic client.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL overrides the API base URL.
	BaseURL string

	// Model is the default model for requests that do not name one.
	Model string

	// Timeout bounds a single request (default: 10m).
	Timeout time.Duration

	// RequestsPerMinute paces requests. Zero disables pacing.
	RequestsPerMinute float64
}

// Client sends prompts to Claude. The SDK's own retries are disabled;
// failures are classified and returned to the caller.
type Client struct {
	client  sdk.Client
	model   string
	limiter *RateLimiter
}

// New creates a new Anthropic client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &domain.ConfigurationError{Field: "ANTHROPIC_API_KEY", Reason: "cannot be empty"}
	}
	if cfg.Model == "" {
		cfg.Model = domain.DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:  sdk.NewClient(opts...),
		model:   cfg.Model,
		limiter: NewRateLimiter(cfg.RequestsPerMinute),
	}, nil
}

// Complete sends one user message and returns the concatenated text blocks.
func (c *Client) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	if !c.limiter.Allow() {
		logger.Debug("Rate limit reached; waiting before calling %s", model)
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	started := time.Now()
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		classified := ClassifyError(err)
		if errors.Is(classified, domain.ErrRateLimited) {
			c.limiter.RecordRateLimitError(retryAfter(err))
		}
		return nil, classified
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if msg.StopReason == sdk.StopReasonMaxTokens {
		logger.Warn("Response truncated at %d output tokens", maxTokens)
	}

	logger.Slog().Debug("anthropic message complete",
		"model", model,
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
		"stop_reason", string(msg.StopReason),
		"duration", time.Since(started))

	return &driven.CompletionResponse{
		Text:         text.String(),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
		StopReason:   string(msg.StopReason),
	}, nil
}

// ModelName returns the default model.
func (c *Client) ModelName() string {
	return c.model
}

// Close releases resources. The SDK client holds none.
func (c *Client) Close() error {
	return nil
}

// ClassifyError maps an API failure to a domain category, keeping the cause:
// rate limits to ErrRateLimited, authentication failures to ErrConfiguration,
// timeouts to ErrTransient and anything else to ErrServer.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %w", domain.ErrTransient, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate") && strings.Contains(msg, "limit"):
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	case strings.Contains(msg, "auth") || strings.Contains(msg, "api key") || strings.Contains(msg, "api_key"):
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") || strings.Contains(msg, "deadline"):
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrServer, err)
	}
}

// retryAfter reads the Retry-After header of a 429 response, in seconds.
func retryAfter(err error) time.Duration {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) || apiErr.Response == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(apiErr.Response.Header.Get("Retry-After"))
	if convErr != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
