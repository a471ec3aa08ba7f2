package postgres

import (
	"time"

	"github.com/social-feed-api/internal/domain"
)

// userRow keeps the passcode in two nullable columns; the check constraint
// forbids one being set without the other.
type userRow struct {
	ID              string     `gorm:"type:text;primaryKey"`
	Username        string     `gorm:"type:text;not null;uniqueIndex:ux_users_username"`
	Email           *string    `gorm:"type:text;uniqueIndex:ux_users_email"`
	PhoneNumber     *string    `gorm:"type:text;uniqueIndex:ux_users_phone"`
	PreferredMethod string     `gorm:"type:text;not null"`
	VerifiedEmail   bool       `gorm:"not null;default:false"`
	VerifiedPhone   bool       `gorm:"not null;default:false"`
	OTPSecret       *string    `gorm:"column:otp_secret;type:text;check:chk_users_otp_pair,(otp_secret IS NULL) = (otp_expiry IS NULL)"`
	OTPExpiry       *time.Time `gorm:"column:otp_expiry"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

type sessionRow struct {
	ID        string    `gorm:"type:text;primaryKey"`
	UserID    string    `gorm:"type:text;not null;index"`
	Method    string    `gorm:"type:text;not null"`
	Enable    bool      `gorm:"not null;default:true"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (sessionRow) TableName() string { return "sessions" }

func toUserRow(u *domain.User) *userRow {
	r := &userRow{
		ID:              u.UserID,
		Username:        u.Username,
		Email:           u.Email,
		PhoneNumber:     u.PhoneNumber,
		PreferredMethod: string(u.PreferredMethod),
		VerifiedEmail:   u.VerifiedEmail,
		VerifiedPhone:   u.VerifiedPhone,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.Passcode != nil {
		secret, exp := u.Passcode.Secret, u.Passcode.ExpiresAt
		r.OTPSecret, r.OTPExpiry = &secret, &exp
	}
	return r
}

func (r *userRow) toDomain() *domain.User {
	u := &domain.User{
		UserID:          r.ID,
		Username:        r.Username,
		Email:           r.Email,
		PhoneNumber:     r.PhoneNumber,
		PreferredMethod: domain.VerificationMethod(r.PreferredMethod),
		VerifiedEmail:   r.VerifiedEmail,
		VerifiedPhone:   r.VerifiedPhone,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
	if r.OTPSecret != nil && r.OTPExpiry != nil {
		u.Passcode = &domain.Passcode{Secret: *r.OTPSecret, ExpiresAt: r.OTPExpiry.UTC()}
	}
	return u
}

func toSessionRow(s *domain.Session) *sessionRow {
	return &sessionRow{
		ID:        s.SessionID,
		UserID:    s.UserID,
		Method:    s.Method,
		Enable:    s.Enable,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (r *sessionRow) toDomain() *domain.Session {
	return &domain.Session{
		SessionID: r.ID,
		UserID:    r.UserID,
		Method:    r.Method,
		Enable:    r.Enable,
		ExpiresAt: r.ExpiresAt.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}
