package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicBaselineModel = "claude-3-haiku-20240307"

// requestTimeout bounds each outbound provider call. Large documents take
// a while to summarize, so this is generous.
const requestTimeout = 2 * time.Minute

// messagesAPI is the slice of the Anthropic SDK the provider uses.
type messagesAPI interface {
	New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	messages messagesAPI
}

func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	client := sdk.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(requestTimeout),
	)
	return &AnthropicProvider{messages: &client.Messages}
}

func (p *AnthropicProvider) BaselineModel() string {
	return anthropicBaselineModel
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	model := req.Model
	if model == "" {
		model = anthropicBaselineModel
	}

	message, err := p.messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: req.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		var apierr *sdk.Error
		if errors.As(err, &apierr) && apierr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, model)
		}
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	result := &CompletionResult{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			result.Text = block.Text
			return result, nil
		}
	}
	return nil, fmt.Errorf("anthropic: no text content in response")
}
