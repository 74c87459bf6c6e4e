//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_HealthAndIndex tests the unauthenticated surface
func TestE2E_HealthAndIndex(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("health", func(t *testing.T) {
		status, body, err := env.Get("/health", "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)

		var health struct {
			Status    string `json:"status"`
			Timestamp string `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(body, &health))
		assert.Equal(t, "ok", health.Status)
		assert.NotEmpty(t, health.Timestamp)
	})

	t.Run("index serves HTML", func(t *testing.T) {
		status, body, err := env.Get("/", "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), "<!DOCTYPE html>")
	})
}

// TestE2E_AnalysisFlow tests analyze, ask, and usage accounting for an
// anonymous and an authenticated caller
func TestE2E_AnalysisFlow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	doc := longDocument("The service may terminate your account at any time.")

	t.Run("anonymous analyze", func(t *testing.T) {
		status, body, err := env.Post("/api/analysis/analyze", map[string]string{"text": doc}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)

		var resp struct {
			Summary string `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.NotEmpty(t, resp.Summary)
	})

	t.Run("analyze rejects short text", func(t *testing.T) {
		status, body, err := env.Post("/api/analysis/analyze", map[string]string{"text": "too short"}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, status)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "Text too short to analyze", resp.Error)
	})

	t.Run("premium model suggests fallback", func(t *testing.T) {
		status, body, err := env.Post("/api/analysis/analyze", map[string]string{
			"text":  doc,
			"model": "claude-3-opus-20240229",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, status)

		var resp struct {
			Error             string `json:"error"`
			Suggestion        string `json:"suggestion"`
			FallbackAvailable bool   `json:"fallbackAvailable"`
		}
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "claude-3-haiku-20240307", resp.Suggestion)
		assert.True(t, resp.FallbackAvailable)
	})

	t.Run("authenticated usage accumulates", func(t *testing.T) {
		env.Register("usage@example.com", "e2e-password")

		status, _, err := env.Post("/api/analysis/analyze", map[string]string{"text": doc}, env.AuthToken)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		status, body, err := env.Post("/api/analysis/ask", map[string]string{
			"question": "Can the service terminate my account?",
			"context":  doc,
		}, env.AuthToken)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var askResp struct {
			Answer string `json:"answer"`
		}
		require.NoError(t, json.Unmarshal(body, &askResp))
		assert.NotEmpty(t, askResp.Answer)

		status, body, err = env.Get("/api/analysis/usage", env.AuthToken)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var usage struct {
			TotalRequests int64 `json:"total_requests"`
			TotalTokens   int64 `json:"total_tokens"`
			Analyses      int64 `json:"analyses"`
			Questions     int64 `json:"questions"`
		}
		require.NoError(t, json.Unmarshal(body, &usage))
		assert.Equal(t, int64(2), usage.TotalRequests)
		assert.Equal(t, int64(280), usage.TotalTokens)
		assert.Equal(t, int64(1), usage.Analyses)
		assert.Equal(t, int64(1), usage.Questions)
	})
}

// TestE2E_FeedbackFlow tests submit, list, and stats
func TestE2E_FeedbackFlow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("submit feedback", func(t *testing.T) {
		status, body, err := env.Post("/api/analysis/feedback", map[string]interface{}{
			"tosUrl":  "https://example.com/terms",
			"tosText": "The full text of the terms.",
			"summary": "A generated summary.",
			"rating":  5,
			"source":  "extension",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)

		var resp struct {
			Success    bool   `json:"success"`
			FeedbackID int64  `json:"feedbackId"`
			Message    string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.True(t, resp.Success)
		assert.Greater(t, resp.FeedbackID, int64(0))
		assert.Equal(t, "Feedback received. Thank you for helping improve the model!", resp.Message)
	})

	t.Run("rejects rating out of range", func(t *testing.T) {
		status, _, err := env.Post("/api/analysis/feedback", map[string]interface{}{
			"tosText": "text",
			"summary": "summary",
			"rating":  7,
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("list and stats", func(t *testing.T) {
		status, _, err := env.Post("/api/analysis/feedback", map[string]interface{}{
			"tosText": "More terms text.",
			"summary": "Another summary.",
			"rating":  3,
			"source":  "cli",
		}, "")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		status, body, err := env.Get("/api/analysis/feedback?limit=10", "")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var list struct {
			Feedback []struct {
				Rating int    `json:"rating"`
				Source string `json:"source"`
			} `json:"feedback"`
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Equal(t, int64(2), list.Total)
		assert.Len(t, list.Feedback, 2)

		status, body, err = env.Get("/api/analysis/feedback/stats", "")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var stats struct {
			AverageRating float64 `json:"average_rating"`
			TotalFeedback int64   `json:"total_feedback"`
		}
		require.NoError(t, json.Unmarshal(body, &stats))
		assert.Equal(t, int64(2), stats.TotalFeedback)
		assert.Equal(t, 4.0, stats.AverageRating)
	})
}

// TestE2E_AuthFlow tests register, login, and verify through the API
func TestE2E_AuthFlow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("register", func(t *testing.T) {
		status, body, err := env.Post("/api/auth/register", map[string]string{
			"email":    "flow@example.com",
			"password": "e2e-password",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, status)

		var session struct {
			Token  string `json:"token"`
			UserID int64  `json:"userId"`
			Email  string `json:"email"`
		}
		require.NoError(t, json.Unmarshal(body, &session))
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "flow@example.com", session.Email)
	})

	t.Run("duplicate register conflicts", func(t *testing.T) {
		status, _, err := env.Post("/api/auth/register", map[string]string{
			"email":    "flow@example.com",
			"password": "e2e-password",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("login and verify", func(t *testing.T) {
		status, body, err := env.Post("/api/auth/login", map[string]string{
			"email":    "flow@example.com",
			"password": "e2e-password",
		}, "")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var session struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(body, &session))

		status, body, err = env.Get("/api/auth/verify", session.Token)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var verify struct {
			Valid bool   `json:"valid"`
			Email string `json:"email"`
		}
		require.NoError(t, json.Unmarshal(body, &verify))
		assert.True(t, verify.Valid)
		assert.Equal(t, "flow@example.com", verify.Email)
	})

	t.Run("verify with garbage token", func(t *testing.T) {
		status, body, err := env.Get("/api/auth/verify", "not-a-token")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var verify struct {
			Valid bool `json:"valid"`
		}
		require.NoError(t, json.Unmarshal(body, &verify))
		assert.False(t, verify.Valid)
	})
}

// TestE2E_CLI tests the tos binary against the running server
func TestE2E_CLI(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.BuildBinaries()

	workDir := t.TempDir()

	t.Run("analyze from file", func(t *testing.T) {
		docPath := filepath.Join(workDir, "terms.txt")
		require.NoError(t, os.WriteFile(docPath, []byte(longDocument("You grant us a license to your content.")), 0644))

		out, err := env.RunTos(workDir, "analyze", "--file", docPath)
		require.NoError(t, err, out)
		assert.Contains(t, out, "Scripted summary")
	})

	t.Run("feedback submit and stats", func(t *testing.T) {
		tosPath := filepath.Join(workDir, "rated.txt")
		summaryPath := filepath.Join(workDir, "summary.txt")
		require.NoError(t, os.WriteFile(tosPath, []byte("The rated terms text."), 0644))
		require.NoError(t, os.WriteFile(summaryPath, []byte("The rated summary."), 0644))

		out, err := env.RunTos(workDir, "feedback", "submit",
			"--tos-file", tosPath,
			"--summary-file", summaryPath,
			"--rating", "4",
		)
		require.NoError(t, err, out)
		assert.Contains(t, out, "Feedback received")

		out, err = env.RunTos(workDir, "feedback", "stats")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Total feedback: 1")
	})

	t.Run("usage for registered account", func(t *testing.T) {
		env.Register("cli@example.com", "e2e-password")

		docPath := filepath.Join(workDir, "cli-terms.txt")
		require.NoError(t, os.WriteFile(docPath, []byte(longDocument("Arbitration clause applies.")), 0644))

		out, err := env.RunTos(workDir, "analyze", "--file", docPath)
		require.NoError(t, err, out)

		out, err = env.RunTos(workDir, "usage")
		require.NoError(t, err, out)
		assert.True(t, strings.Contains(out, "Total requests"), out)
	})
}
