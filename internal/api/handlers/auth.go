package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/talk-to-your-terms/tosapi/internal/api"
	"github.com/talk-to-your-terms/tosapi/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*service.AuthSession, error)
	Login(ctx context.Context, email, password string) (*service.AuthSession, error)
	Verify(token string) (userID string, email string, err error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, SessionResponse{
		Token:  session.Token,
		UserID: session.UserID,
		Email:  session.Email,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, SessionResponse{
		Token:  session.Token,
		UserID: session.UserID,
		Email:  session.Email,
	})
}

// Verify reports whether the presented bearer token is still good. It
// never returns an error status; the popup treats any non-200 as a
// network problem rather than an expired session.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		api.JSON(w, http.StatusOK, VerifyResponse{Valid: false})
		return
	}

	userID, email, err := h.svc.Verify(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		api.JSON(w, http.StatusOK, VerifyResponse{Valid: false})
		return
	}

	api.JSON(w, http.StatusOK, VerifyResponse{Valid: true, UserID: userID, Email: email})
}
