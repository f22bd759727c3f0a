package auth

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SessionResolver loads the persisted session behind a token.
type SessionResolver interface {
	Current(ctx context.Context, sessionID string) (Session, bool, error)
}

// Middleware validates JWTs and enforces RBAC.
type Middleware struct {
	Secret   []byte
	Policy   Policy
	Sessions SessionResolver
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy, sessions SessionResolver) *Middleware {
	return &Middleware{Secret: secret, Policy: policy, Sessions: sessions}
}

// Wrap applies auth and RBAC to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		required, ok := m.Policy.RequiredPermission(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		session, subject, err := m.authenticate(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if required != "" && !session.HasPermission(required) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session, subject)))
	})
}

// Resolve attaches the session of a valid bearer token, if any, without
// enforcing permissions. Used by routes that are exempt from RBAC but still
// want to know who is calling.
func (m *Middleware) Resolve(r *http.Request) (Session, bool) {
	if m == nil || r == nil {
		return Session{}, false
	}
	session, _, err := m.authenticate(r)
	if err != nil {
		return Session{}, false
	}
	return session, true
}

func (m *Middleware) authenticate(r *http.Request) (Session, string, error) {
	claims, err := ParseJWT(extractBearer(r), m.Secret)
	if err != nil {
		return Session{}, "", ErrUnauthorized
	}
	if m.Sessions == nil {
		role, _ := NormalizeRole(claims.Role)
		var issuedAt time.Time
		if claims.IssuedAt != nil {
			issuedAt = claims.IssuedAt.Time
		}
		return NewSession(claims.SessionID, role, issuedAt), claims.Subject, nil
	}
	session, found, err := m.Sessions.Current(r.Context(), claims.SessionID)
	if err != nil {
		return Session{}, "", err
	}
	if !found {
		return Session{}, "", ErrSessionExpired
	}
	return session, claims.Subject, nil
}

func extractBearer(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
