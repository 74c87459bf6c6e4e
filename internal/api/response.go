package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// FallbackResponse is returned when the requested model is unavailable for
// the caller's API tier. The extension retries with Suggestion when
// FallbackAvailable is set.
type FallbackResponse struct {
	Error             string `json:"error"`
	Suggestion        string `json:"suggestion"`
	FallbackAvailable bool   `json:"fallbackAvailable"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var unavailable *domain.ModelUnavailableError
	if errors.As(err, &unavailable) {
		return http.StatusBadRequest
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeAlreadyExists:
		return http.StatusConflict
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeModelUnavailable:
		return http.StatusBadRequest
	case domain.ErrCodeGateway:
		return http.StatusInternalServerError
	case domain.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an appropriate error response based on the error type.
// Clients match on error strings, so DomainError responses carry the bare
// message without the internal code prefix.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)

	var unavailable *domain.ModelUnavailableError
	if errors.As(err, &unavailable) {
		JSON(w, status, FallbackResponse{
			Error:             unavailable.Error(),
			Suggestion:        unavailable.Suggestion,
			FallbackAvailable: true,
		})
		return
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		Error(w, status, domainErr.Message)
		return
	}
	Error(w, status, err.Error())
}
