// Package memory holds process-local repositories used by STORE_DRIVER=memory
// and by tests. Contents are lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/social-feed-api/internal/domain"
)

// UserRepo is a mutex-guarded user table. The compare-and-clear of a
// passcode happens under the write lock, so it is atomic per process.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*domain.User)}
}

func (r *UserRepo) Put(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.UserID]; ok {
		return fmt.Errorf("user %s exists: %w", u.UserID, domain.ErrConflict)
	}
	for _, other := range r.users {
		switch {
		case other.Username == u.Username:
			return fmt.Errorf("username taken: %w", domain.ErrConflict)
		case sameOptional(other.Email, u.Email):
			return fmt.Errorf("email taken: %w", domain.ErrConflict)
		case sameOptional(other.PhoneNumber, u.PhoneNumber):
			return fmt.Errorf("phone number taken: %w", domain.ErrConflict)
		}
	}
	r.users[u.UserID] = clone(u)
	return nil
}

func (r *UserRepo) Get(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return clone(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email != nil && *u.Email == email })
}

func (r *UserRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.PhoneNumber != nil && *u.PhoneNumber == phone })
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *UserRepo) SetPasscode(_ context.Context, userID string, p domain.Passcode) error {
	return r.mutate(userID, func(u *domain.User) { u.Passcode = &p })
}

func (r *UserRepo) ConsumePasscode(_ context.Context, userID, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.Passcode == nil || u.Passcode.Secret != code || u.Passcode.Expired(now) {
		return false, nil
	}
	u.Passcode = nil
	u.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *UserRepo) SetPreferredMethod(_ context.Context, userID string, method domain.VerificationMethod) error {
	return r.mutate(userID, func(u *domain.User) { u.PreferredMethod = method })
}

func (r *UserRepo) MarkVerified(_ context.Context, userID string, method domain.VerificationMethod) error {
	return r.mutate(userID, func(u *domain.User) {
		switch method {
		case domain.MethodEmail:
			u.VerifiedEmail = true
		case domain.MethodPhone:
			u.VerifiedPhone = true
		}
	})
}

func (r *UserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
}

func (r *UserRepo) mutate(userID string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func clone(u *domain.User) *domain.User {
	c := *u
	if u.Passcode != nil {
		p := *u.Passcode
		c.Passcode = &p
	}
	return &c
}

func sameOptional(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
