package middleware

import (
	"context"
	"net/http"

	"github.com/thesisflow/backend/internal/auth"
)

// SessionResolver resolves a session credential to a user id.
// Returns "" when the session is unknown or expired.
type SessionResolver interface {
	Get(ctx context.Context, sessionID string) (string, error)
}

// RequireAuth validates the caller's credential — an Authorization bearer
// token or the session cookie — and injects the user_id into the request
// context. Fails closed with 401 when the credential is absent or invalid.
func RequireAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.BearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				http.Error(w, `{"error":"Missing Authorization Bearer token"}`, http.StatusUnauthorized)
				return
			}

			userID, err := sessions.Get(r.Context(), token)
			if err != nil || userID == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
