package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/social-feed-api/internal/domain"
	"gorm.io/gorm"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(toUserRow(u)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("user exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.first(ctx, "id = ?", userID)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.first(ctx, "phone_number = ?", phone)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepo) SetPasscode(ctx context.Context, userID string, p domain.Passcode) error {
	return r.update(ctx, userID, map[string]interface{}{
		"otp_secret": p.Secret,
		"otp_expiry": p.ExpiresAt.UTC(),
	})
}

// ConsumePasscode clears both passcode columns in one conditional UPDATE.
// It reports true only when that statement matched the row.
func (r *UserRepo) ConsumePasscode(ctx context.Context, userID, code string, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ? AND otp_secret = ? AND otp_expiry >= ?", userID, code, now.UTC()).
		Updates(map[string]interface{}{
			"otp_secret": nil,
			"otp_expiry": nil,
			"updated_at": now.UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *UserRepo) SetPreferredMethod(ctx context.Context, userID string, method domain.VerificationMethod) error {
	return r.update(ctx, userID, map[string]interface{}{"preferred_method": string(method)})
}

func (r *UserRepo) MarkVerified(ctx context.Context, userID string, method domain.VerificationMethod) error {
	switch method {
	case domain.MethodEmail:
		return r.update(ctx, userID, map[string]interface{}{"verified_email": true})
	case domain.MethodPhone:
		return r.update(ctx, userID, map[string]interface{}{"verified_phone": true})
	}
	return fmt.Errorf("unknown verification method %q: %w", method, domain.ErrBadRequest)
}

func (r *UserRepo) first(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *UserRepo) update(ctx context.Context, userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", userID).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}
