package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiModels is the part of *genai.Models used by Gemini.
type GeminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures NewGemini.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API base URL, for proxies and tests.
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini calls the Gemini API through google.golang.org/genai.
type Gemini struct {
	Models GeminiModels
	Model  string
}

// NewGemini creates a Gemini generator backed by the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required (GEMINI_API_KEY or GOOGLE_API_KEY)")
	}
	cc := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(cfg.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{Models: client.Models, Model: model}, nil
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	if g.Models == nil {
		return "", generationError(g.Name(), errors.New("client not configured"))
	}
	resp, err := g.Models.GenerateContent(ctx, g.Model, genai.Text(prompt), &genai.GenerateContentConfig{CandidateCount: 1})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", generationError(g.Name(), fmt.Errorf("api status %d: %w", apiErr.Code, err))
		}
		return "", generationError(g.Name(), err)
	}
	if resp == nil {
		return nonEmpty(g.Name(), "")
	}
	return nonEmpty(g.Name(), resp.Text())
}
