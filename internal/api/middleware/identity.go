package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	userIDSlotKey contextKey = "user_id_slot"
)

// userIDSlot is a per-request cell that Identity fills in once the token
// is resolved. Context values only flow downstream, so middleware ahead
// of Identity in the chain reads the id back through the slot after the
// handler returns.
type userIDSlot struct {
	id string
}

// Attribution installs the slot AttributedUserID reads from. It must run
// before any middleware that wants the resolved user id.
func Attribution(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), userIDSlotKey, &userIDSlot{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenVerifier checks a bearer token and returns the account id it was
// issued to.
type TokenVerifier interface {
	Verify(token string) (userID string, email string, err error)
}

// Identity attributes every request to a user id. A valid bearer token
// maps to the account id it carries; anything else, including a missing
// or bad token, gets a fresh anonymous UUID. Requests are never rejected
// here, so anonymous extension installs keep working without accounts.
func Identity(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token := strings.TrimPrefix(authHeader, "Bearer ")
				if id, _, err := verifier.Verify(token); err == nil {
					userID = id
				}
			}

			if userID == "" {
				userID = uuid.NewString()
			}

			if slot, ok := r.Context().Value(userIDSlotKey).(*userIDSlot); ok {
				slot.id = userID
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the user id from context.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// AttributedUserID returns the user id Identity resolved for this
// request, readable from middleware outside the Identity group once the
// request has completed. Empty if Attribution is not installed or
// Identity never ran.
func AttributedUserID(ctx context.Context) string {
	if slot, ok := ctx.Value(userIDSlotKey).(*userIDSlot); ok {
		return slot.id
	}
	return ""
}
