package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
)

// SessionStore keeps sessions for the life of the process.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]auth.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]auth.Session), now: time.Now}
}

func (s *SessionStore) Create(ctx context.Context, session auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.ID == "" {
		session.ID = newID()
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) Resolve(ctx context.Context, sessionID string) (auth.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return auth.Principal{}, auth.ErrSessionNotFound
	}
	if session.RevokedAt != nil {
		return auth.Principal{}, auth.ErrSessionRevoked
	}
	if !session.Active(s.now()) {
		return auth.Principal{}, auth.ErrSessionExpired
	}
	return session.Principal, nil
}

func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return auth.ErrSessionNotFound
	}
	if session.RevokedAt == nil {
		now := s.now()
		session.RevokedAt = &now
		s.sessions[sessionID] = session
	}
	return nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(before) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}
