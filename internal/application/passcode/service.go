// Package passcode issues and verifies one-time numeric passcodes stored on
// the user record.
package passcode

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/social-feed-api/internal/domain"
	"github.com/social-feed-api/internal/observability/metrics"
)

// Outcome is the internal result of a verification attempt. Callers outside
// this package only ever see accept or reject.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeAbsent   Outcome = "absent"
	OutcomeExpired  Outcome = "expired"
	OutcomeMismatch Outcome = "mismatch"
	// OutcomeReplayed means the code matched but another request consumed it first.
	OutcomeReplayed Outcome = "replayed"
)

type passcodeStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	SetPasscode(ctx context.Context, userID string, p domain.Passcode) error
	// ConsumePasscode clears the passcode only if its secret equals code and
	// it has not expired at now. It reports whether a row was cleared.
	ConsumePasscode(ctx context.Context, userID, code string, now time.Time) (bool, error)
}

// Generator returns a zero-padded numeric code of the given width.
type Generator func(digits int) (string, error)

type Service struct {
	store    passcodeStore
	ttl      time.Duration
	digits   int
	now      func() time.Time
	generate Generator
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithGenerator replaces the crypto/rand code generator.
func WithGenerator(g Generator) Option {
	return func(s *Service) { s.generate = g }
}

func NewService(store passcodeStore, ttl time.Duration, digits int, opts ...Option) *Service {
	s := &Service{
		store:    store,
		ttl:      ttl,
		digits:   digits,
		now:      time.Now,
		generate: Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate draws uniformly from [0, 10^digits) and zero-pads the result.
func Generate(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate passcode: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}

// Issue generates a passcode for userID and stores it, replacing any
// previous one. The plaintext is returned for out-of-band delivery.
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	code, err := s.generate(s.digits)
	if err != nil {
		return "", err
	}
	p := domain.NewPasscode(code, s.now(), s.ttl)
	if err := s.store.SetPasscode(ctx, userID, p); err != nil {
		return "", fmt.Errorf("store passcode: %w", err)
	}
	return code, nil
}

// Check runs the verification steps and consumes the passcode on success.
// Only store failures are returned as errors.
func (s *Service) Check(ctx context.Context, userID, code string) (Outcome, error) {
	outcome, err := s.check(ctx, userID, code)
	if err != nil {
		return "", err
	}
	metrics.OTPVerificationsTotal.WithLabelValues(string(outcome)).Inc()
	slog.DebugContext(ctx, "passcode verification", "user_id", userID, "outcome", outcome)
	return outcome, nil
}

func (s *Service) check(ctx context.Context, userID, code string) (Outcome, error) {
	u, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return OutcomeAbsent, nil
	}
	if err != nil {
		return "", err
	}
	if u.Passcode == nil {
		return OutcomeAbsent, nil
	}
	now := s.now()
	if u.Passcode.Expired(now) {
		return OutcomeExpired, nil
	}
	if subtle.ConstantTimeCompare([]byte(u.Passcode.Secret), []byte(code)) != 1 {
		return OutcomeMismatch, nil
	}
	ok, err := s.store.ConsumePasscode(ctx, userID, code, now)
	if err != nil {
		return "", fmt.Errorf("consume passcode: %w", err)
	}
	if !ok {
		return OutcomeReplayed, nil
	}
	return OutcomeAccepted, nil
}

// Verify reports whether code is the user's current, unexpired passcode,
// invalidating it when it is.
func (s *Service) Verify(ctx context.Context, userID, code string) (bool, error) {
	outcome, err := s.Check(ctx, userID, code)
	if err != nil {
		return false, err
	}
	return outcome == OutcomeAccepted, nil
}
