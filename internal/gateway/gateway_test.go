package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessagesAPI struct {
	gotParams sdk.MessageNewParams
	message   *sdk.Message
	err       error
}

func (f *fakeMessagesAPI) New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error) {
	f.gotParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.message, nil
}

func TestAnthropicProvider_Complete(t *testing.T) {
	fake := &fakeMessagesAPI{
		message: &sdk.Message{
			Content: []sdk.ContentBlockUnion{{Type: "text", Text: "a summary"}},
			Usage:   sdk.Usage{InputTokens: 120, OutputTokens: 45},
		},
	}
	p := &AnthropicProvider{messages: fake}

	result, err := p.Complete(context.Background(), CompletionRequest{
		Model:     "claude-3-opus-20240229",
		MaxTokens: 2000,
		Prompt:    "summarize this",
	})
	require.NoError(t, err)

	assert.Equal(t, "a summary", result.Text)
	assert.Equal(t, int64(165), result.TotalTokens())
	assert.Equal(t, sdk.Model("claude-3-opus-20240229"), fake.gotParams.Model)
	assert.Equal(t, int64(2000), fake.gotParams.MaxTokens)
}

func TestAnthropicProvider_DefaultsToBaseline(t *testing.T) {
	fake := &fakeMessagesAPI{
		message: &sdk.Message{
			Content: []sdk.ContentBlockUnion{{Type: "text", Text: "ok"}},
		},
	}
	p := &AnthropicProvider{messages: fake}

	_, err := p.Complete(context.Background(), CompletionRequest{MaxTokens: 100, Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, sdk.Model(anthropicBaselineModel), fake.gotParams.Model)
}

func TestAnthropicProvider_ModelNotFound(t *testing.T) {
	fake := &fakeMessagesAPI{
		err: &sdk.Error{StatusCode: http.StatusNotFound},
	}
	p := &AnthropicProvider{messages: fake}

	_, err := p.Complete(context.Background(), CompletionRequest{Model: "claude-3-opus-20240229", MaxTokens: 100, Prompt: "x"})
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestAnthropicProvider_OtherProviderError(t *testing.T) {
	fake := &fakeMessagesAPI{
		err: &sdk.Error{StatusCode: http.StatusTooManyRequests},
	}
	p := &AnthropicProvider{messages: fake}

	_, err := p.Complete(context.Background(), CompletionRequest{Model: "m", MaxTokens: 100, Prompt: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelNotFound)
}

type fakeChatAPI struct {
	gotReq openai.ChatCompletionRequest
	resp   openai.ChatCompletionResponse
	err    error
}

func (f *fakeChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func TestOpenAIProvider_Complete(t *testing.T) {
	fake := &fakeChatAPI{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "an answer"}},
			},
			Usage: openai.Usage{PromptTokens: 80, CompletionTokens: 20},
		},
	}
	p := &OpenAIProvider{chat: fake}

	result, err := p.Complete(context.Background(), CompletionRequest{MaxTokens: 1024, Prompt: "q"})
	require.NoError(t, err)

	assert.Equal(t, "an answer", result.Text)
	assert.Equal(t, int64(100), result.TotalTokens())
	assert.Equal(t, openAIBaselineModel, fake.gotReq.Model)
}

func TestOpenAIProvider_ModelNotFound(t *testing.T) {
	fake := &fakeChatAPI{
		err: &openai.APIError{HTTPStatusCode: http.StatusNotFound, Message: "model not found"},
	}
	p := &OpenAIProvider{chat: fake}

	_, err := p.Complete(context.Background(), CompletionRequest{Model: "gpt-4o", MaxTokens: 10, Prompt: "q"})
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestOpenAIProvider_OtherError(t *testing.T) {
	fake := &fakeChatAPI{err: errors.New("connection refused")}
	p := &OpenAIProvider{chat: fake}

	_, err := p.Complete(context.Background(), CompletionRequest{MaxTokens: 10, Prompt: "q"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelNotFound)
}

func TestNew(t *testing.T) {
	p, err := New("anthropic", "key")
	require.NoError(t, err)
	assert.Equal(t, anthropicBaselineModel, p.BaselineModel())

	p, err = New("", "key")
	require.NoError(t, err)
	assert.Equal(t, anthropicBaselineModel, p.BaselineModel())

	p, err = New("openai", "key")
	require.NoError(t, err)
	assert.Equal(t, openAIBaselineModel, p.BaselineModel())

	_, err = New("cohere", "key")
	assert.Error(t, err)
}
