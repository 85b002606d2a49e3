// Package llm adapts text-generation providers to a single prompt-in,
// text-out capability.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/hyperifyio/goleads/internal/failure"
)

// Generator produces a completion for a prompt. Implementations return
// *failure.GenerationError on provider errors and on empty completions.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Provider names as reported by Name and accepted by DefaultModel.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default models per provider, used when none is configured.
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5"
)

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	default:
		return DefaultGeminiModel
	}
}

// DefaultMaxTokens bounds completions for providers that require a limit.
const DefaultMaxTokens = 1024

func generationError(provider string, err error) error {
	var ge *failure.GenerationError
	if errors.As(err, &ge) {
		return err
	}
	return &failure.GenerationError{Provider: provider, Err: err}
}

func nonEmpty(provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &failure.GenerationError{Provider: provider, Err: failure.ErrEmptyCompletion}
	}
	return text, nil
}
