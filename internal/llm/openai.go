package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the subset of the go-openai client used here. Any
// OpenAI-compatible backend, including the local stub, can satisfy it.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient builds a go-openai client for baseURL (empty means the
// public API).
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAI sends each prompt as a single user message, with an optional
// system message.
type OpenAI struct {
	Client      Client
	Model       string
	System      string
	Temperature float32
	MaxTokens   int
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	if o.Client == nil {
		return "", generationError(o.Name(), errors.New("client not configured"))
	}
	model := o.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if o.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: o.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	}
	resp, err := o.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", generationError(o.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nonEmpty(o.Name(), "")
	}
	return nonEmpty(o.Name(), resp.Choices[0].Message.Content)
}
