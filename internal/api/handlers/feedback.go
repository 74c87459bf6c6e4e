package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/talk-to-your-terms/tosapi/internal/api"
	"github.com/talk-to-your-terms/tosapi/internal/api/middleware"
	"github.com/talk-to-your-terms/tosapi/internal/domain"
	"github.com/talk-to-your-terms/tosapi/internal/pagination"
	"github.com/talk-to-your-terms/tosapi/internal/repository"
)

type FeedbackService interface {
	Submit(ctx context.Context, f *domain.Feedback) (int64, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*domain.Feedback, int64, error)
	Stats(ctx context.Context) (*domain.FeedbackStats, error)
}

type FeedbackHandler struct {
	svc FeedbackService
}

func NewFeedbackHandler(svc FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

type SubmitFeedbackRequest struct {
	TosURL      string `json:"tosUrl"`
	TosText     string `json:"tosText"`
	Summary     string `json:"summary"`
	Rating      int    `json:"rating"`
	Feedback    string `json:"feedback"`
	Corrections string `json:"corrections"`
	Model       string `json:"model"`
	Source      string `json:"source"`
}

type SubmitFeedbackResponse struct {
	Success    bool   `json:"success"`
	FeedbackID int64  `json:"feedbackId"`
	Message    string `json:"message"`
}

type FeedbackItem struct {
	ID              int64  `json:"id"`
	UserID          string `json:"user_id"`
	TosURL          string `json:"tos_url,omitempty"`
	TosText         string `json:"tos_text"`
	OriginalSummary string `json:"original_summary"`
	Rating          int    `json:"rating"`
	UserFeedback    string `json:"user_feedback,omitempty"`
	UserCorrections string `json:"user_corrections,omitempty"`
	ModelUsed       string `json:"model_used"`
	Source          string `json:"source"`
	CreatedAt       string `json:"created_at"`
}

type ListFeedbackResponse struct {
	Feedback []FeedbackItem `json:"feedback"`
	Total    int64          `json:"total"`
	Offset   int            `json:"offset"`
	Limit    int            `json:"limit"`
}

type RatingBucketResponse struct {
	Rating     int     `json:"rating"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SourceCountResponse struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

type FeedbackStatsResponse struct {
	RatingDistribution []RatingBucketResponse `json:"rating_distribution"`
	AverageRating      float64                `json:"average_rating"`
	TotalFeedback      int64                  `json:"total_feedback"`
	BySource           []SourceCountResponse  `json:"by_source"`
}

func feedbackToItem(f *domain.Feedback) FeedbackItem {
	return FeedbackItem{
		ID:              f.ID,
		UserID:          f.UserID,
		TosURL:          f.TosURL,
		TosText:         f.TosText,
		OriginalSummary: f.OriginalSummary,
		Rating:          f.Rating,
		UserFeedback:    f.UserFeedback,
		UserCorrections: f.UserCorrections,
		ModelUsed:       f.ModelUsed,
		Source:          f.Source,
		CreatedAt:       f.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	feedback := &domain.Feedback{
		UserID:          middleware.GetUserID(r.Context()),
		TosURL:          req.TosURL,
		TosText:         req.TosText,
		OriginalSummary: req.Summary,
		Rating:          req.Rating,
		UserFeedback:    req.Feedback,
		UserCorrections: req.Corrections,
		ModelUsed:       req.Model,
		Source:          req.Source,
	}

	id, err := h.svc.Submit(r.Context(), feedback)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, SubmitFeedbackResponse{
		Success:    true,
		FeedbackID: id,
		Message:    "Feedback received. Thank you for helping improve the model!",
	})
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.Parse(r.URL.Query())

	filter := repository.ListFilter{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if raw := r.URL.Query().Get("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil || !domain.ValidRating(rating) {
			api.Error(w, http.StatusBadRequest, "Rating must be between 1 and 5")
			return
		}
		filter.Rating = &rating
	}

	items, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ListFeedbackResponse{
		Feedback: make([]FeedbackItem, 0, len(items)),
		Total:    total,
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	}
	for _, f := range items {
		resp.Feedback = append(resp.Feedback, feedbackToItem(f))
	}

	api.JSON(w, http.StatusOK, resp)
}

func (h *FeedbackHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := FeedbackStatsResponse{
		RatingDistribution: make([]RatingBucketResponse, 0, len(stats.RatingDistribution)),
		AverageRating:      stats.AverageRating,
		TotalFeedback:      stats.TotalFeedback,
		BySource:           make([]SourceCountResponse, 0, len(stats.BySource)),
	}
	for _, bucket := range stats.RatingDistribution {
		resp.RatingDistribution = append(resp.RatingDistribution, RatingBucketResponse{
			Rating:     bucket.Rating,
			Count:      bucket.Count,
			Percentage: bucket.Percentage,
		})
	}
	for _, source := range stats.BySource {
		resp.BySource = append(resp.BySource, SourceCountResponse{
			Source: source.Source,
			Count:  source.Count,
		})
	}

	api.JSON(w, http.StatusOK, resp)
}
