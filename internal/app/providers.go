package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hyperifyio/goleads/internal/fetch"
	"github.com/hyperifyio/goleads/internal/llm"
	"github.com/hyperifyio/goleads/internal/search"
)

// newSearchProvider builds the configured search backend. cfg must be
// defaulted and validated.
func newSearchProvider(cfg Config, hc *http.Client) (search.Provider, error) {
	switch cfg.SearchProvider {
	case "serpapi":
		return &search.SerpAPI{APIKey: cfg.SerpAPIKey, HTTPClient: hc}, nil
	case "searxng":
		ua := cfg.SearxUA
		if ua == "" {
			ua = "goleads/1.0 (+https://github.com/hyperifyio/goleads)"
		}
		return &search.SearxNG{BaseURL: cfg.SearxURL, APIKey: cfg.SearxKey, HTTPClient: hc, UserAgent: ua}, nil
	case "duckduckgo":
		return &search.DuckDuckGo{HTTPClient: hc, UserAgent: fetch.DefaultUserAgent}, nil
	case "file":
		return &search.FileProvider{Path: cfg.FileSearchPath}, nil
	}
	return nil, fmt.Errorf("unknown search provider %q", cfg.SearchProvider)
}

// newGenerator builds the configured text generator.
func newGenerator(ctx context.Context, cfg Config, hc *http.Client) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case llm.ProviderGemini:
		return llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:     cfg.LLMAPIKey,
			Model:      cfg.LLMModel,
			BaseURL:    cfg.LLMBaseURL,
			HTTPClient: hc,
		})
	case llm.ProviderOpenAI:
		return &llm.OpenAI{
			Client: llm.NewOpenAIClient(cfg.LLMAPIKey, cfg.LLMBaseURL),
			Model:  cfg.LLMModel,
		}, nil
	case llm.ProviderAnthropic:
		return &llm.Anthropic{
			Messages:  llm.NewAnthropicMessages(cfg.LLMAPIKey, cfg.LLMBaseURL),
			Model:     cfg.LLMModel,
			MaxTokens: llm.DefaultMaxTokens,
		}, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
}
