package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/social-feed-api/internal/domain"
	"github.com/social-feed-api/internal/observability/metrics"
	"github.com/social-feed-api/internal/pkg/id"
	"github.com/social-feed-api/internal/pkg/identifier"
)

// RegisterResult is the created user plus the outcome of the first
// passcode delivery.
type RegisterResult struct {
	User             *domain.User
	Method           domain.VerificationMethod
	VerificationSent bool
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type passcodeIssuer interface {
	Issue(ctx context.Context, userID string) (string, error)
}

type sender interface {
	Send(ctx context.Context, method domain.VerificationMethod, destination, code string) error
}

type ServiceDeps struct {
	UserRepo  userStore
	Passcodes passcodeIssuer
	Delivery  sender
	Now       func() time.Time
}

type service struct {
	repo      userStore
	passcodes passcodeIssuer
	delivery  sender
	now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      deps.UserRepo,
		passcodes: deps.Passcodes,
		delivery:  deps.Delivery,
		now:       now,
	}
}

// Register creates an unverified account and sends the first passcode over
// the chosen channel. A failed delivery is reported in the result, not as an
// error.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error) {
	res, err := s.register(ctx, req)
	switch {
	case err == nil:
		metrics.AuthRegistrationsTotal.WithLabelValues("created").Inc()
	case errors.Is(err, domain.ErrConflict):
		metrics.AuthRegistrationsTotal.WithLabelValues("conflict").Inc()
	case errors.Is(err, domain.ErrBadRequest):
		metrics.AuthRegistrationsTotal.WithLabelValues("invalid").Inc()
	default:
		metrics.AuthRegistrationsTotal.WithLabelValues("error").Inc()
	}
	return res, err
}

func (s *service) register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error) {
	method := domain.VerificationMethod(req.VerificationMethod)
	if !method.Valid() {
		return nil, fmt.Errorf("a valid verification method (email or phone) is required: %w", domain.ErrBadRequest)
	}
	email, err := identifier.Parse(domain.MethodEmail, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	phone, err := identifier.Parse(domain.MethodPhone, req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrBadRequest)
	}

	if err := s.checkFree(ctx, s.repo.GetByEmail, email, "user with this email already exists"); err != nil {
		return nil, err
	}
	if err := s.checkFree(ctx, s.repo.GetByUsername, username, "username is already taken"); err != nil {
		return nil, err
	}
	if err := s.checkFree(ctx, s.repo.GetByPhone, phone, "phone number is already registered"); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:          id.New(),
		Username:        username,
		Email:           &email,
		PhoneNumber:     &phone,
		PreferredMethod: method,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}

	code, err := s.passcodes.Issue(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	sent := true
	if err := s.delivery.Send(ctx, method, u.Destination(method), code); err != nil {
		slog.WarnContext(ctx, "registration passcode delivery failed", "user_id", u.UserID, "method", method, "err", err)
		sent = false
	}
	result := "sent"
	if !sent {
		result = "failed"
	}
	metrics.OTPIssuedTotal.WithLabelValues(string(method), result).Inc()

	return &RegisterResult{User: u, Method: method, VerificationSent: sent}, nil
}

func (s *service) checkFree(ctx context.Context, lookup func(context.Context, string) (*domain.User, error), key, msg string) error {
	_, err := lookup(ctx, key)
	if err == nil {
		return fmt.Errorf("%s: %w", msg, domain.ErrConflict)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}
