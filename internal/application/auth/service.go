package auth

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

type RequestPasscodeRequest struct {
	Identifier string `json:"identifier"`
	Method     string `json:"method"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	OTP        string `json:"otp"`
}

type LoginResult struct {
	AccessToken string
	Session     *domain.Session
}

type Service interface {
	RequestPasscode(ctx context.Context, req RequestPasscodeRequest) error
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

// Consumer-defined interfaces: accept the smallest surface the service needs.

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	SetPreferredMethod(ctx context.Context, userID string, method domain.VerificationMethod) error
	MarkVerified(ctx context.Context, userID string, method domain.VerificationMethod) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
}

type passcodes interface {
	Issue(ctx context.Context, userID string) (string, error)
	Verify(ctx context.Context, userID, code string) (bool, error)
}

type sender interface {
	Send(ctx context.Context, method domain.VerificationMethod, destination, code string) error
}

type tokenSigner interface {
	Sign(u *domain.User, sessionID string) (string, error)
	Expiry() time.Duration
}

// ServiceDeps groups the collaborators of the auth service.
type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionStore
	Passcodes   passcodes
	Delivery    sender
	JWTProvider tokenSigner
	Now         func() time.Time
}

type service struct {
	users     userStore
	sessions  sessionStore
	passcodes passcodes
	delivery  sender
	jwt       tokenSigner
	now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:     deps.UserRepo,
		sessions:  deps.SessionRepo,
		passcodes: deps.Passcodes,
		delivery:  deps.Delivery,
		jwt:       deps.JWTProvider,
		now:       now,
	}
}

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

// RequestPasscode issues a passcode for the account behind the identifier and
// sends it over the requested channel. The method is recorded as the user's
// preferred channel whether or not delivery succeeds.
func (s *service) RequestPasscode(ctx context.Context, req RequestPasscodeRequest) error {
	raw := strings.TrimSpace(req.Identifier)
	if raw == "" {
		return fmt.Errorf("identifier (email or phone) is required: %w", domain.ErrBadRequest)
	}
	method := domain.VerificationMethod(req.Method)
	if !method.Valid() {
		return fmt.Errorf("valid method (email or phone) is required: %w", domain.ErrBadRequest)
	}
	key, err := identifier.Parse(method, raw)
	if err != nil {
		return err
	}

	u, err := s.lookup(ctx, method, key)
	if err != nil {
		return err
	}

	code, err := s.passcodes.Issue(ctx, u.UserID)
	if err != nil {
		return err
	}

	sendErr := s.delivery.Send(ctx, method, key, code)
	if sendErr != nil {
		slog.WarnContext(ctx, "passcode delivery failed", "user_id", u.UserID, "method", method, "err", sendErr)
		metrics.OTPIssuedTotal.WithLabelValues(string(method), "failed").Inc()
	} else {
		metrics.OTPIssuedTotal.WithLabelValues(string(method), "sent").Inc()
	}

	if err := s.users.SetPreferredMethod(ctx, u.UserID, method); err != nil {
		return fmt.Errorf("record preferred method: %w", err)
	}
	if sendErr != nil {
		return fmt.Errorf("send passcode: %w", domain.ErrDeliveryFailed)
	}
	return nil
}

// Login exchanges an identifier and passcode for a session token. Every
// rejection is the same ErrUnauthorized; only store failures differ.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	res, err := s.login(ctx, req)
	switch {
	case err == nil:
		metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrUnauthorized):
		metrics.AuthLoginsTotal.WithLabelValues("rejected").Inc()
	default:
		metrics.AuthLoginsTotal.WithLabelValues("error").Inc()
	}
	return res, err
}

func (s *service) login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	raw := strings.TrimSpace(req.Identifier)
	if raw == "" || req.OTP == "" {
		return nil, errInvalidCredentials
	}
	method, key := identifier.Detect(raw)
	if key == "" {
		return nil, errInvalidCredentials
	}

	u, err := s.lookup(ctx, method, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.passcodes.Verify(ctx, u.UserID, req.OTP)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errInvalidCredentials
	}

	if err := s.users.MarkVerified(ctx, u.UserID, method); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	switch method {
	case domain.MethodEmail:
		u.VerifiedEmail = true
	case domain.MethodPhone:
		u.VerifiedPhone = true
	}

	now := s.now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    u.UserID,
		Method:    string(method),
		Enable:    true,
		ExpiresAt: now.Add(s.jwt.Expiry()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, err := s.jwt.Sign(u, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	sess.User = u
	return &LoginResult{AccessToken: token, Session: sess}, nil
}

func (s *service) lookup(ctx context.Context, method domain.VerificationMethod, key string) (*domain.User, error) {
	var (
		u   *domain.User
		err error
	)
	if method == domain.MethodEmail {
		u, err = s.users.GetByEmail(ctx, key)
	} else {
		u, err = s.users.GetByPhone(ctx, key)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return u, err
}
