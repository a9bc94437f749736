package memory

import (
	"context"
	"sync"
	"time"

	"github.com/greenthumb/nursery-api/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	mu      sync.RWMutex
	byToken map[string]ports.Session
	byUser  map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byToken: map[string]ports.Session{},
		byUser:  map[string]string{},
	}
}

func (s *SessionStore) Save(_ context.Context, session ports.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if previous, ok := s.byUser[session.Username]; ok {
		delete(s.byToken, previous)
	}
	s.byToken[session.Token] = session
	s.byUser[session.Username] = session.Token
	return nil
}

func (s *SessionStore) Lookup(_ context.Context, token string) (*ports.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byToken[token]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := session
	return &clone, nil
}

func (s *SessionStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.byUser[username]; ok {
		delete(s.byToken, token)
		delete(s.byUser, username)
	}
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for token, session := range s.byToken {
		if session.ExpiresAt.Before(now) {
			delete(s.byToken, token)
			delete(s.byUser, session.Username)
			purged++
		}
	}
	return purged, nil
}
