package service

import (
	"context"

	"github.com/talk-to-your-terms/tosapi/internal/domain"
	"github.com/talk-to-your-terms/tosapi/internal/repository"
)

type FeedbackRepo interface {
	Create(ctx context.Context, f *domain.Feedback) (int64, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*domain.Feedback, int64, error)
	Stats(ctx context.Context) (*domain.FeedbackStats, error)
}

type UsageStatsRepo interface {
	StatsForUser(ctx context.Context, userID string) (*domain.UsageStats, error)
}

// FeedbackService handles summary ratings submitted by the extension and
// the aggregate views over them.
type FeedbackService struct {
	feedbackRepo FeedbackRepo
	usageRepo    UsageStatsRepo
}

func NewFeedbackService(feedbackRepo FeedbackRepo, usageRepo UsageStatsRepo) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo, usageRepo: usageRepo}
}

// Submit validates and stores one feedback row, filling in the model and
// source defaults when the client omits them. Returns the new row's id.
func (s *FeedbackService) Submit(ctx context.Context, f *domain.Feedback) (int64, error) {
	if f.ModelUsed == "" {
		f.ModelUsed = domain.DefaultModel
	}
	if f.Source == "" {
		f.Source = domain.DefaultSource
	}
	if err := domain.ValidateFeedback(f); err != nil {
		return 0, err
	}

	id, err := s.feedbackRepo.Create(ctx, f)
	if err != nil {
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to save feedback", err)
	}
	return id, nil
}

// List returns a page of feedback rows, newest first, plus the total count
// matching the filter.
func (s *FeedbackService) List(ctx context.Context, filter repository.ListFilter) ([]*domain.Feedback, int64, error) {
	items, total, err := s.feedbackRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to list feedback", err)
	}
	return items, total, nil
}

// Stats aggregates the whole feedback table.
func (s *FeedbackService) Stats(ctx context.Context) (*domain.FeedbackStats, error) {
	stats, err := s.feedbackRepo.Stats(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to compute feedback stats", err)
	}
	return stats, nil
}

// UsageStats aggregates one caller's usage rows.
func (s *FeedbackService) UsageStats(ctx context.Context, userID string) (*domain.UsageStats, error) {
	stats, err := s.usageRepo.StatsForUser(ctx, userID)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to compute usage stats", err)
	}
	return stats, nil
}
