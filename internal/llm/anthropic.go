package llm

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicMessages is the part of the SDK message service used by Anthropic.
type AnthropicMessages interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// NewAnthropicMessages returns the SDK message service for apiKey. A non-empty
// baseURL points the client at a proxy or test server.
func NewAnthropicMessages(apiKey, baseURL string, opts ...option.RequestOption) AnthropicMessages {
	all := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)
	client := sdk.NewClient(all...)
	return &client.Messages
}

// Anthropic calls the Messages API through anthropic-sdk-go.
type Anthropic struct {
	Messages  AnthropicMessages
	Model     string
	System    string
	MaxTokens int64
}

func (a *Anthropic) Name() string { return ProviderAnthropic }

func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	if a.Messages == nil {
		return "", generationError(a.Name(), errors.New("client not configured"))
	}
	model := a.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	}
	if a.System != "" {
		params.System = []sdk.TextBlockParam{{Text: a.System}}
	}
	msg, err := a.Messages.New(ctx, params)
	if err != nil {
		return "", generationError(a.Name(), err)
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return nonEmpty(a.Name(), b.String())
}
