package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPasscode_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewPasscode("482913", now, 10*time.Minute)

	assert.Equal(t, now.Add(10*time.Minute), p.ExpiresAt)
	assert.False(t, p.Expired(now.Add(5*time.Minute)))
	assert.False(t, p.Expired(p.ExpiresAt), "expiry instant itself is still valid")
	assert.True(t, p.Expired(p.ExpiresAt.Add(time.Nanosecond)))
}

func TestUser_Destination(t *testing.T) {
	email := "a@b.com"
	phone := "2065550100"
	u := &User{Email: &email, PhoneNumber: &phone}

	assert.Equal(t, email, u.Destination(MethodEmail))
	assert.Equal(t, phone, u.Destination(MethodPhone))
	assert.Equal(t, "", (&User{}).Destination(MethodPhone))
	assert.Equal(t, "", u.Destination("fax"))
}

func TestVerificationMethod_Valid(t *testing.T) {
	assert.True(t, MethodEmail.Valid())
	assert.True(t, MethodPhone.Valid())
	assert.False(t, VerificationMethod("sms").Valid())
}

func TestSession_Active(t *testing.T) {
	now := time.Now()
	s := &Session{Enable: true, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, s.Active(now))

	s.Enable = false
	assert.False(t, s.Active(now))

	s = &Session{Enable: true, ExpiresAt: now.Add(-time.Second)}
	assert.False(t, s.Active(now))
}
