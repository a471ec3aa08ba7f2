package domain

import "time"

// Passcode is a one-time numeric credential owned by exactly one user.
// A user without an outstanding passcode holds a nil *Passcode, so the
// secret and its expiry are always set and cleared together.
type Passcode struct {
	Secret    string
	ExpiresAt time.Time
}

// NewPasscode returns a passcode for secret valid for ttl from now.
func NewPasscode(secret string, now time.Time, ttl time.Duration) Passcode {
	return Passcode{Secret: secret, ExpiresAt: now.Add(ttl).UTC()}
}

// Expired reports whether now is strictly after the expiry. A code checked
// at exactly its expiry instant is still valid.
func (p Passcode) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
