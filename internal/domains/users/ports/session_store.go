package ports

import (
	"context"
	"time"
)

// Session associates a bearer token with a username until it expires.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// SessionStore abstracts session/token persistence.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	// Lookup resolves a token to its session, or ErrNotFound when the token
	// is unknown or expired.
	Lookup(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, username string) error
	// PurgeExpired removes sessions past their expiry, returning the count.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// NoopSessionStore is a safe default when callers do not need session persistence.
var NoopSessionStore SessionStore = noopSessionStore{}

type noopSessionStore struct{}

func (noopSessionStore) Save(_ context.Context, _ Session) error { return nil }
func (noopSessionStore) Lookup(_ context.Context, _ string) (*Session, error) {
	return nil, ErrNotFound
}
func (noopSessionStore) Delete(_ context.Context, _ string) error { return nil }
func (noopSessionStore) PurgeExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}
