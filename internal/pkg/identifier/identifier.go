// Package identifier parses the user-supplied email or phone string used to
// look an account up. Phone numbers are reduced to their digits everywhere
// they are stored or compared; no country code or length rule is applied.
package identifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/social-feed-api/internal/domain"
)

var phoneShape = regexp.MustCompile(`^[\d\s()+\-]+$`)

// NormalizePhone keeps only the ASCII digits of s. It is idempotent.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// LooksLikeEmail is the loose email check used across the API.
func LooksLikeEmail(s string) bool {
	return strings.Contains(s, "@")
}

// LooksLikePhone reports whether s only contains digits, spaces,
// parentheses, plus and minus signs, and at least one digit.
func LooksLikePhone(s string) bool {
	return phoneShape.MatchString(s) && NormalizePhone(s) != ""
}

// Parse validates raw against the declared method and returns the lookup
// key: the email unchanged or the normalized phone number.
func Parse(method domain.VerificationMethod, raw string) (string, error) {
	switch method {
	case domain.MethodEmail:
		if !LooksLikeEmail(raw) {
			return "", fmt.Errorf("invalid email format: %w", domain.ErrBadRequest)
		}
		return raw, nil
	case domain.MethodPhone:
		if !LooksLikePhone(raw) {
			return "", fmt.Errorf("invalid phone number format: %w", domain.ErrBadRequest)
		}
		return NormalizePhone(raw), nil
	default:
		return "", fmt.Errorf("valid method (email or phone) is required: %w", domain.ErrBadRequest)
	}
}

// Detect infers the method from raw (anything containing '@' is an email)
// and returns it together with the lookup key.
func Detect(raw string) (domain.VerificationMethod, string) {
	if LooksLikeEmail(raw) {
		return domain.MethodEmail, raw
	}
	return domain.MethodPhone, NormalizePhone(raw)
}
