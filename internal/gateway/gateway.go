// Package gateway wraps the external summarization providers behind a
// single completion interface. The HTTP layer never talks to a provider
// SDK directly.
package gateway

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelNotFound is returned when the provider rejects the requested
// model with a "not found"-class error. Callers decide whether a fallback
// model should be suggested.
var ErrModelNotFound = errors.New("model not found")

// CompletionRequest is one outbound generation call.
type CompletionRequest struct {
	Model     string
	MaxTokens int64
	Prompt    string
}

// CompletionResult carries the generated text and the provider-reported
// token counts used for usage accounting.
type CompletionResult struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// TotalTokens is the billed token count for one call.
func (r *CompletionResult) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens
}

// Provider is a single LLM backend.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	// BaselineModel is the provider's lowest-tier model, available on every
	// account. It is the default when no model is requested and the
	// suggested fallback when a premium model is rejected.
	BaselineModel() string
}

// New creates a Provider by name: "anthropic" or "openai".
func New(provider, apiKey string) (Provider, error) {
	switch provider {
	case "", "anthropic":
		return NewAnthropicProvider(apiKey), nil
	case "openai":
		return NewOpenAIProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown gateway provider %q", provider)
	}
}
