package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var result map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.Equal(t, "value", result["key"])
}

func TestJSON_NilData(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Body.String())
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, "invalid input")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.Equal(t, "invalid input", result.Error)
}

func TestDomainErrorToHTTP(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation error", domain.ErrTextTooShort, http.StatusBadRequest},
		{"not found error", domain.ErrUserNotFound, http.StatusNotFound},
		{"already exists error", domain.ErrEmailAlreadyRegistered, http.StatusConflict},
		{"unauthorized error", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"model unavailable", &domain.ModelUnavailableError{Model: "x", Suggestion: "y"}, http.StatusBadRequest},
		{"gateway error", domain.NewGatewayError("upstream", assert.AnError), http.StatusInternalServerError},
		{"internal error", domain.NewDomainError(domain.ErrCodeInternalError, "internal"), http.StatusInternalServerError},
		{"unknown domain error", domain.NewDomainError("UNKNOWN", "unknown"), http.StatusInternalServerError},
		{"non-domain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DomainErrorToHTTP(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHandleError_BareMessage(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domain.ErrTextTooShort)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.Equal(t, "Text too short to analyze", result.Error)
}

func TestHandleError_ModelUnavailable(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, &domain.ModelUnavailableError{
		Model:      "claude-3-5-sonnet-20241022",
		Suggestion: "claude-3-haiku-20240307",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result FallbackResponse
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.True(t, result.FallbackAvailable)
	assert.Equal(t, "claude-3-haiku-20240307", result.Suggestion)
	assert.Contains(t, result.Error, "claude-3-5-sonnet-20241022")
}

func TestHandleError_NonDomainError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var result ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.Equal(t, assert.AnError.Error(), result.Error)
}
