package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/PabloGalante/myvfriend/internal/domain"
)

// SessionStore is an in-memory domain.SessionStore.
// It is NOT persistent and is only suitable for development / local mode.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.UserID]*domain.UserSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.UserID]*domain.UserSession),
	}
}

func (s *SessionStore) Load(_ context.Context, userID domain.UserID) (*domain.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return domain.NewSession(userID), nil
	}
	return sess.Clone(), nil
}

func (s *SessionStore) Save(_ context.Context, session *domain.UserSession) error {
	if session == nil || session.UserID == "" {
		return errors.New("memory store: session without user id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.UserID] = session.Clone()
	return nil
}

// Len returns the number of stored users.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
