package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gasbalance-cloud/internal/auth"
)

const defaultKeyPrefix = "gasbalance:session:"

// SessionStore persists session roles in Redis so they survive restarts.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore dials addr and verifies connectivity.
func NewSessionStore(addr string) (*SessionStore, error) {
	if addr == "" {
		return nil, errors.New("redis session store: empty addr")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &SessionStore{client: client, prefix: defaultKeyPrefix}, nil
}

// SaveRole stores role for sessionID with ttl.
func (s *SessionStore) SaveRole(ctx context.Context, sessionID string, role auth.Role, ttl time.Duration) error {
	if s == nil || s.client == nil {
		return errors.New("redis session store: nil client")
	}
	if sessionID == "" {
		return errors.New("redis session store: empty session id")
	}
	if err := s.client.Set(ctx, s.key(sessionID), string(role), ttl).Err(); err != nil {
		return fmt.Errorf("save session role: %w", err)
	}
	return nil
}

// LoadRole returns the stored role for sessionID.
func (s *SessionStore) LoadRole(ctx context.Context, sessionID string) (auth.Role, bool, error) {
	if s == nil || s.client == nil {
		return "", false, errors.New("redis session store: nil client")
	}
	value, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load session role: %w", err)
	}
	return auth.Role(value), true, nil
}

// Delete removes sessionID.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if s == nil || s.client == nil {
		return errors.New("redis session store: nil client")
	}
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *SessionStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *SessionStore) key(sessionID string) string {
	return s.prefix + sessionID
}
