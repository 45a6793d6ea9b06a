package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(4096), cfg.MaxMessageSize)
	assert.Equal(t, 32, cfg.MaxUsernameLength)
	assert.Equal(t, 256, cfg.SendBufferSize)
	assert.Equal(t, RateLimitConfig{Burst: 60, RefillInterval: time.Minute}, cfg.RateLimit)
	assert.Equal(t, "Welcome to Global Chat!", cfg.WelcomeMessage)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestNewConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://chat.example.com, http://localhost:3000")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("MAX_USERNAME_LENGTH", "16")
	t.Setenv("SEND_BUFFER_SIZE", "8")
	t.Setenv("HTTP_RATE_LIMIT_BURST", "5")
	t.Setenv("HTTP_RATE_LIMIT_INTERVAL", "30s")
	t.Setenv("WELCOME_MESSAGE", "hello")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, []string{"https://chat.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.MaxMessageSize)
	assert.Equal(t, 16, cfg.MaxUsernameLength)
	assert.Equal(t, 8, cfg.SendBufferSize)
	assert.Equal(t, RateLimitConfig{Burst: 5, RefillInterval: 30 * time.Second}, cfg.RateLimit)
	assert.Equal(t, "hello", cfg.WelcomeMessage)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestNewConfigFromEnv_NonPositiveFallsBack(t *testing.T) {
	t.Setenv("MAX_MESSAGE_SIZE", "-1")
	t.Setenv("HTTP_RATE_LIMIT_BURST", "0")
	t.Setenv("SEND_BUFFER_SIZE", "-10")

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, int64(defaultMaxMessageSize), cfg.MaxMessageSize)
	assert.Equal(t, defaultRateLimitBurst, cfg.RateLimit.Burst)
	assert.Equal(t, defaultSendBufferSize, cfg.SendBufferSize)
}

func TestNewConfigFromEnv_UnparsableIsAnError(t *testing.T) {
	t.Setenv("MAX_MESSAGE_SIZE", "lots")

	_, err := NewConfigFromEnv()
	require.Error(t, err)
}

func TestSanitizeConfig_Port(t *testing.T) {
	tests := map[string]string{
		"":               ":8080",
		"  ":             ":8080",
		"3000":           ":3000",
		":3000":          ":3000",
		"127.0.0.1:3000": "127.0.0.1:3000",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeConfig(Config{Port: in}).Port, "port %q", in)
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Nil(t, parseOrigins("   "))
	assert.Equal(t, []string{"*"}, parseOrigins("*"))
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, parseOrigins(" http://a.com ,http://b.com"))
}
