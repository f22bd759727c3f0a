package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil), nil)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_AdminForbiddenAlertTransition(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "sess-admin", RoleAdmin)
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil), nil)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/alerts/7", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_OperatorForbiddenDashboard(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "sess-op", RoleOperator)
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil), nil)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/health", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_SessionRoleIsAuthoritative(t *testing.T) {
	secret := []byte("test-secret")
	store := newStubStore()
	manager, err := NewSessionManager(store)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	session, err := manager.Login(context.Background(), "sess-1", string(RoleOperator))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	token := mustToken(t, secret, session.ID, RoleOperator)

	var seen Role
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil), manager)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/alerts/7", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || seen != RoleOperator {
		t.Fatalf("expected operator pass-through, got %d role=%s", resp.Code, seen)
	}

	if _, err := manager.Logout(context.Background(), session.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ExemptPath(t *testing.T) {
	mw := NewMiddleware([]byte("s"), NewDefaultPolicy([]string{"/healthz"}, []string{"/api/v1/session"}), nil)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for _, path := range []string{"/healthz", "/api/v1/session"} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusNoContent {
			t.Fatalf("%s: expected 204, got %d", path, resp.Code)
		}
	}
}

func mustToken(t *testing.T, secret []byte, sessionID string, role Role) string {
	t.Helper()
	signed, err := IssueJWT(NewSession(sessionID, role, time.Now()), secret, time.Hour, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
