package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/talk-to-your-terms/tosapi/internal/domain"
	"github.com/talk-to-your-terms/tosapi/internal/gateway"
	"github.com/talk-to-your-terms/tosapi/internal/telemetry"
)

const (
	// minAnalyzeChars rejects inputs too short to be a real document.
	minAnalyzeChars = 100
	// maxAnalyzeChars caps what one analyze call submits to the provider.
	maxAnalyzeChars = 100000
	// maxAskContextChars caps the document context on ask calls.
	maxAskContextChars = 50000

	analyzeMaxTokens = 2000
	askMaxTokens     = 1024

	contextTruncatedMarker = "\n\n[Context truncated...]"
)

const analyzePromptTemplate = `Analyze the following Terms of Service document and provide a clear, comprehensive summary in English.

Your summary should cover:
- Key rights and obligations of users
- Important limitations or restrictions
- Privacy and data usage practices
- Cancellation or termination policies
- Any concerning or unusual terms
- What users are agreeing to

Make the summary conversational and easy to understand. Focus on what users need to know before agreeing to these terms.

Terms of Service:
%s`

const askPromptTemplate = `You are a helpful assistant analyzing Terms of Service. Answer the following question based on the provided ToS document.

Question: %s

Terms of Service Context:
%s

Provide a clear, concise answer based only on the information in the ToS. If the answer isn't found in the ToS, say so.`

type UsageRecorder interface {
	Create(ctx context.Context, u *domain.Usage) error
}

// AnalysisService runs the two billed gateway operations and records
// usage for each successful call.
type AnalysisService struct {
	provider  gateway.Provider
	usageRepo UsageRecorder
}

func NewAnalysisService(provider gateway.Provider, usageRepo UsageRecorder) *AnalysisService {
	return &AnalysisService{provider: provider, usageRepo: usageRepo}
}

// Analyze summarizes a ToS document. Inputs over maxAnalyzeChars are cut
// silently; the extension trims page text the same way before submitting.
func (s *AnalysisService) Analyze(ctx context.Context, userID, text, model string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnalysisService.Analyze", telemetry.SpanAttributes{
		UserID:    userID,
		Model:     model,
		Operation: "analyze",
	})
	defer span.End()

	if utf8.RuneCountInString(text) < minAnalyzeChars {
		return "", domain.ErrTextTooShort
	}

	truncated := truncateRunes(text, maxAnalyzeChars)

	result, err := s.complete(ctx, model, gateway.CompletionRequest{
		Model:     model,
		MaxTokens: analyzeMaxTokens,
		Prompt:    fmt.Sprintf(analyzePromptTemplate, truncated),
	})
	if err != nil {
		span.SetError(err)
		return "", err
	}

	if err := s.recordUsage(ctx, userID, domain.ActionAnalyze, result.TotalTokens()); err != nil {
		span.SetError(err)
		return "", err
	}

	return result.Text, nil
}

// Ask answers a question strictly from the supplied document context.
// Oversized context is cut to maxAskContextChars with a marker appended so
// the model knows the document is incomplete.
func (s *AnalysisService) Ask(ctx context.Context, userID, question, docContext, model string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnalysisService.Ask", telemetry.SpanAttributes{
		UserID:    userID,
		Model:     model,
		Operation: "ask",
	})
	defer span.End()

	if question == "" || docContext == "" {
		return "", domain.ErrQuestionRequired
	}

	if utf8.RuneCountInString(docContext) > maxAskContextChars {
		docContext = truncateRunes(docContext, maxAskContextChars) + contextTruncatedMarker
	}

	result, err := s.complete(ctx, model, gateway.CompletionRequest{
		Model:     model,
		MaxTokens: askMaxTokens,
		Prompt:    fmt.Sprintf(askPromptTemplate, question, docContext),
	})
	if err != nil {
		span.SetError(err)
		return "", err
	}

	if err := s.recordUsage(ctx, userID, domain.ActionAsk, result.TotalTokens()); err != nil {
		span.SetError(err)
		return "", err
	}

	return result.Text, nil
}

// complete calls the provider and translates its failures. A rejected
// premium model becomes a ModelUnavailableError carrying the baseline as
// the suggested fallback; requests already on the baseline propagate the
// raw failure instead, since there is nothing left to fall back to.
func (s *AnalysisService) complete(ctx context.Context, requestedModel string, req gateway.CompletionRequest) (*gateway.CompletionResult, error) {
	telemetry.AddBreadcrumb(ctx, "gateway", fmt.Sprintf("completion request (model %q, max_tokens %d)", req.Model, req.MaxTokens))

	result, err := s.provider.Complete(ctx, req)
	if err == nil {
		return result, nil
	}

	baseline := s.provider.BaselineModel()
	if errors.Is(err, gateway.ErrModelNotFound) && requestedModel != "" && requestedModel != baseline {
		return nil, &domain.ModelUnavailableError{Model: requestedModel, Suggestion: baseline}
	}

	telemetry.CaptureError(ctx, err)
	return nil, domain.NewGatewayError(err.Error(), err)
}

func (s *AnalysisService) recordUsage(ctx context.Context, userID string, action domain.ActionType, tokens int64) error {
	usage := &domain.Usage{
		UserID:     userID,
		ActionType: action,
		TokensUsed: tokens,
	}
	if err := domain.ValidateUsage(usage); err != nil {
		return err
	}
	if err := s.usageRepo.Create(ctx, usage); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to record usage", err)
	}
	return nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
