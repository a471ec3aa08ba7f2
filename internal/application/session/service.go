package session

import (
	"context"
	"fmt"
	"time"

	"github.com/social-feed-api/internal/domain"
)

type Service interface {
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type sessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type ServiceDeps struct {
	SessionRepo sessionStore
	UserRepo    userStore
	Now         func() time.Time
}

type service struct {
	sessionRepo sessionStore
	userRepo    userStore
	now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{sessionRepo: deps.SessionRepo, userRepo: deps.UserRepo, now: now}
}

// GetCurrent returns the session with its user. A logged-out or expired
// session is ErrUnauthorized.
func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Active(s.now()) {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Disable(ctx, sessionID)
}
