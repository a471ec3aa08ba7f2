package identifier

import (
	"errors"
	"testing"

	"github.com/social-feed-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "2065550100", NormalizePhone("(206) 555-0100"))
	assert.Equal(t, "2065550100", NormalizePhone("2065550100"))
	assert.Equal(t, "12065550100", NormalizePhone("+1 206-555-0100"))
	assert.Equal(t, "", NormalizePhone("()- +"))
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	for _, in := range []string{"(206) 555-0100", "+44 20 7946 0958", "5551234"} {
		once := NormalizePhone(in)
		assert.Equal(t, once, NormalizePhone(once), in)
	}
}

func TestLooksLikePhone(t *testing.T) {
	assert.True(t, LooksLikePhone("(206) 555-0100"))
	assert.True(t, LooksLikePhone("+1-206-555-0100"))
	assert.False(t, LooksLikePhone("206.555.0100"))
	assert.False(t, LooksLikePhone("call me"))
	assert.False(t, LooksLikePhone("() -"))
	assert.False(t, LooksLikePhone(""))
}

func TestParse(t *testing.T) {
	key, err := Parse(domain.MethodPhone, "(206) 555-0100")
	require.NoError(t, err)
	assert.Equal(t, "2065550100", key)

	key, err = Parse(domain.MethodEmail, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", key)

	_, err = Parse(domain.MethodEmail, "alice.example.com")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Contains(t, err.Error(), "invalid email format")

	_, err = Parse(domain.MethodPhone, "alice@example.com")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Contains(t, err.Error(), "invalid phone number format")

	_, err = Parse("carrier-pigeon", "x")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestDetect(t *testing.T) {
	m, key := Detect("alice@example.com")
	assert.Equal(t, domain.MethodEmail, m)
	assert.Equal(t, "alice@example.com", key)

	m, key = Detect("(206) 555-0100")
	assert.Equal(t, domain.MethodPhone, m)
	assert.Equal(t, "2065550100", key)
}
