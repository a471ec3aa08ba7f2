package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, StoreDynamo, cfg.StoreDriver)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 6, cfg.OTPDigits)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, DeliveryLog, cfg.DeliveryMode)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.TrustProxy)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("OTP_DIGITS", "8")
	t.Setenv("APP_ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 8, cfg.OTPDigits)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("OTP_TTL", "ten minutes")
	t.Setenv("RATE_LIMIT_BURST", "lots")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_OTPDigitsClamped(t *testing.T) {
	t.Setenv("OTP_DIGITS", "2")
	assert.Equal(t, 4, Load().OTPDigits)

	t.Setenv("OTP_DIGITS", "40")
	assert.Equal(t, 10, Load().OTPDigits)
}

func TestLoad_RateLimitBurstAtLeastOne(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "0")
	assert.Equal(t, 1, Load().RateLimitBurst)

	t.Setenv("RATE_LIMIT_BURST", "-3")
	assert.Equal(t, 1, Load().RateLimitBurst)
}

func TestLoad_TrustProxy(t *testing.T) {
	t.Setenv("TRUST_PROXY", "true")
	assert.True(t, Load().TrustProxy)
}
