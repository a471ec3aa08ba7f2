package domain

import "time"

type Session struct {
	SessionID string    `json:"id" dynamodbav:"session_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Method    string    `json:"method" dynamodbav:"method"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
	User      *User     `json:"user,omitempty" dynamodbav:"-"`
}

// Active reports whether the session is enabled and not past its expiry.
func (s *Session) Active(now time.Time) bool {
	return s.Enable && now.Before(s.ExpiresAt)
}
