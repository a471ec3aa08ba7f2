package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/social-feed-api/internal/domain"
)

type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *SessionRepo) Put(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *s
	c.User = nil
	r.sessions[s.SessionID] = c
	return nil
}

func (r *SessionRepo) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	return &s, nil
}

func (r *SessionRepo) Disable(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	s.Enable = false
	s.UpdatedAt = time.Now().UTC()
	r.sessions[sessionID] = s
	return nil
}
