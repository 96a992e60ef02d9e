// Package ai provides factory functions for creating LLM client adapters.
package ai

import (
	"fmt"
	"strings"

	anthropicllm "github.com/custodia-labs/cartographer/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// CreateLLMClient creates the Anthropic client described by settings.
// It returns nil without error when no API key is configured, so debug
// runs and offline commands still work.
func CreateLLMClient(settings domain.Settings) (driven.LLMClient, error) {
	if strings.TrimSpace(settings.AnthropicAPIKey) == "" {
		return nil, nil
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	client, err := anthropicllm.New(anthropicllm.Config{
		APIKey:            settings.AnthropicAPIKey,
		Model:             settings.Model,
		Timeout:           settings.RequestTimeout,
		RequestsPerMinute: settings.RequestsPerMinute,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return client, nil
}
