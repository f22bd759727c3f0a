package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is the authorization view of one dashboard user. Permissions and
// navigation are always derived from Role.
type Session struct {
	ID          string        `json:"id,omitempty"`
	Role        Role          `json:"role"`
	RoleLabel   string        `json:"role_label"`
	Permissions PermissionSet `json:"permissions"`
	Navigation  []NavItem     `json:"navigation"`
	LoggedIn    bool          `json:"logged_in"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

// NewSession builds a session for role.
func NewSession(id string, role Role, updatedAt time.Time) Session {
	perms := PermissionsFor(role)
	return Session{
		ID:          id,
		Role:        role,
		RoleLabel:   perms.Label,
		Permissions: perms,
		Navigation:  NavigationFor(role),
		LoggedIn:    id != "",
		UpdatedAt:   updatedAt,
	}
}

// DefaultSession is the session of a user with no prior choice.
func DefaultSession() Session {
	return NewSession("", DefaultRole, time.Time{})
}

// HasPermission reports whether the session grants permission.
func (s Session) HasPermission(permission Permission) bool {
	return HasPermission(s, permission)
}

// HasPermission looks permission up in the session's permission set.
func HasPermission(s Session, permission Permission) bool {
	return s.Permissions.Has(permission)
}

// SessionStore persists the chosen role per session id.
type SessionStore interface {
	SaveRole(ctx context.Context, sessionID string, role Role, ttl time.Duration) error
	LoadRole(ctx context.Context, sessionID string) (Role, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// SessionManager is the only writer of persisted sessions.
type SessionManager struct {
	store SessionStore
	ttl   time.Duration
	clock Clock
	newID func() string
}

// SessionOption customizes the session manager.
type SessionOption func(*SessionManager)

// WithSessionTTL sets how long a persisted role survives without a new login.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSessionClock overrides the clock.
func WithSessionClock(clock Clock) SessionOption {
	return func(m *SessionManager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) SessionOption {
	return func(m *SessionManager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// NewSessionManager constructs a session manager.
func NewSessionManager(store SessionStore, opts ...SessionOption) (*SessionManager, error) {
	if store == nil {
		return nil, errors.New("auth: nil session store")
	}
	m := &SessionManager{
		store: store,
		ttl:   7 * 24 * time.Hour,
		clock: systemClock{},
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Login selects role for the session, creating a session id when empty.
func (m *SessionManager) Login(ctx context.Context, sessionID, role string) (Session, error) {
	if m == nil {
		return Session{}, errors.New("auth: nil session manager")
	}
	normalized, ok := NormalizeRole(role)
	if !ok {
		return Session{}, ErrInvalidRole
	}
	if sessionID == "" {
		sessionID = m.newID()
	}
	if err := m.store.SaveRole(ctx, sessionID, normalized, m.ttl); err != nil {
		return Session{}, err
	}
	return NewSession(sessionID, normalized, m.clock.Now().UTC()), nil
}

// Logout forgets the session and returns the default session.
func (m *SessionManager) Logout(ctx context.Context, sessionID string) (Session, error) {
	if m == nil {
		return Session{}, errors.New("auth: nil session manager")
	}
	if sessionID != "" {
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return Session{}, err
		}
	}
	return DefaultSession(), nil
}

// Current resolves a persisted session. Unknown ids report found=false and
// the default session.
func (m *SessionManager) Current(ctx context.Context, sessionID string) (Session, bool, error) {
	if m == nil {
		return Session{}, false, errors.New("auth: nil session manager")
	}
	if sessionID == "" {
		return DefaultSession(), false, nil
	}
	role, found, err := m.store.LoadRole(ctx, sessionID)
	if err != nil {
		return Session{}, false, err
	}
	if !found {
		return DefaultSession(), false, nil
	}
	return NewSession(sessionID, role, m.clock.Now().UTC()), true, nil
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration {
	if m == nil {
		return 0
	}
	return m.ttl
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
