package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thesisflow/backend/internal/auth"
)

type stubSessions struct {
	sessions map[string]string
}

func (s *stubSessions) Get(_ context.Context, sessionID string) (string, error) {
	return s.sessions[sessionID], nil
}

func protected(t *testing.T, sessions SessionResolver) http.Handler {
	t.Helper()
	return RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value("user_id").(string)
		w.Write([]byte(userID))
	}))
}

func TestRequireAuth_BearerToken(t *testing.T) {
	h := protected(t, &stubSessions{sessions: map[string]string{"tok-1": "user-1"}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "user-1" {
		t.Fatalf("expected user_id in context, got %q", w.Body.String())
	}
}

func TestRequireAuth_SessionCookie(t *testing.T) {
	h := protected(t, &stubSessions{sessions: map[string]string{"tok-2": "user-2"}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "tok-2"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireAuth_MissingCredential(t *testing.T) {
	h := protected(t, &stubSessions{sessions: map[string]string{}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_UnknownSession(t *testing.T) {
	h := protected(t, &stubSessions{sessions: map[string]string{}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
