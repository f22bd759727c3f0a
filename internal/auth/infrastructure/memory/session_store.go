package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"gasbalance-cloud/internal/auth"
)

type entry struct {
	role      auth.Role
	expiresAt time.Time
}

// SessionStore keeps session roles in process memory. Each write replaces
// the whole entry under the lock.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

// NewSessionStore constructs a store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		data: make(map[string]entry),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// SaveRole stores role for sessionID.
func (s *SessionStore) SaveRole(ctx context.Context, sessionID string, role auth.Role, ttl time.Duration) error {
	_ = ctx
	if sessionID == "" {
		return errors.New("session store: empty session id")
	}
	e := entry{role: role}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.data[sessionID] = e
	s.mu.Unlock()
	return nil
}

// LoadRole returns the stored role for sessionID. Expired entries are
// removed, unless a newer SaveRole replaced them in the meantime.
func (s *SessionStore) LoadRole(ctx context.Context, sessionID string) (auth.Role, bool, error) {
	_ = ctx
	s.mu.RLock()
	e, ok := s.data[sessionID]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !s.expired(e) {
		return e.role, true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.data[sessionID]
	if !ok {
		return "", false, nil
	}
	if !s.expired(current) {
		return current.role, true, nil
	}
	delete(s.data, sessionID)
	return "", false, nil
}

func (s *SessionStore) expired(e entry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}

// Delete removes sessionID.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	_ = ctx
	s.mu.Lock()
	delete(s.data, sessionID)
	s.mu.Unlock()
	return nil
}
