package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Equal(t, 4, cfg.Notify.Workers)
	assert.Equal(t, 256, cfg.Notify.QueueSize)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("EMAIL_PROVIDER", "resend")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("NOTIFY_SEND_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "resend", cfg.Email.Provider)
	assert.Equal(t, "re_123", cfg.Email.ResendAPIKey)
	assert.Equal(t, 3*time.Second, cfg.Notify.SendTimeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{"GO_ENV": "production", "JWT_SECRET": ""}},
		{"malformed duration", map[string]string{"GO_ENV": "test", "JWT_EXPIRY": "forever"}},
		{"zero workers", map[string]string{"GO_ENV": "test", "NOTIFY_WORKERS": "0"}},
		{"zero burst", map[string]string{"GO_ENV": "test", "RATE_LIMIT_BURST": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
