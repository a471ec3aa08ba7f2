package http

import (
	"context"
	"time"

	"github.com/social-feed-api/internal/domain"
)

// UserRepository is the user store every driver (dynamo, postgres, memory)
// implements.
type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	SetPasscode(ctx context.Context, userID string, p domain.Passcode) error
	// ConsumePasscode atomically clears the passcode if it equals code and
	// has not expired at now.
	ConsumePasscode(ctx context.Context, userID, code string, now time.Time) (bool, error)
	SetPreferredMethod(ctx context.Context, userID string, method domain.VerificationMethod) error
	MarkVerified(ctx context.Context, userID string, method domain.VerificationMethod) error
}

// SessionRepository is the session store every driver implements.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

// DeliveryGateway sends a passcode to a destination over one channel.
type DeliveryGateway interface {
	Send(ctx context.Context, method domain.VerificationMethod, destination, code string) error
}
