package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/talk-to-your-terms/tosapi/internal/api"
	"github.com/talk-to-your-terms/tosapi/internal/api/middleware"
	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

type AnalysisService interface {
	Analyze(ctx context.Context, userID, text, model string) (string, error)
	Ask(ctx context.Context, userID, question, docContext, model string) (string, error)
}

type UsageStatsService interface {
	UsageStats(ctx context.Context, userID string) (*domain.UsageStats, error)
}

type AnalysisHandler struct {
	analysis AnalysisService
	usage    UsageStatsService
}

func NewAnalysisHandler(analysis AnalysisService, usage UsageStatsService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, usage: usage}
}

type AnalyzeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type AnalyzeResponse struct {
	Summary string `json:"summary"`
}

type AskRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
	Model    string `json:"model"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type UsageResponse struct {
	TotalRequests int64 `json:"total_requests"`
	TotalTokens   int64 `json:"total_tokens"`
	Analyses      int64 `json:"analyses"`
	Questions     int64 `json:"questions"`
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := middleware.GetUserID(r.Context())

	summary, err := h.analysis.Analyze(r.Context(), userID, req.Text, req.Model)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, AnalyzeResponse{Summary: summary})
}

func (h *AnalysisHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := middleware.GetUserID(r.Context())

	answer, err := h.analysis.Ask(r.Context(), userID, req.Question, req.Context, req.Model)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, AskResponse{Answer: answer})
}

func (h *AnalysisHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stats, err := h.usage.UsageStats(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, UsageResponse{
		TotalRequests: stats.TotalRequests,
		TotalTokens:   stats.TotalTokens,
		Analyses:      stats.Analyses,
		Questions:     stats.Questions,
	})
}
