// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the chat service.
package server

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

const (
	defaultPort              = ":8080"
	defaultMaxMessageSize    = 4096
	defaultMaxUsernameLength = 32
	defaultSendBufferSize    = 256
	defaultRateLimitBurst    = 60
	defaultRateLimitInterval = time.Minute
	defaultWelcomeMessage    = "Welcome to Global Chat!"
	defaultLogLevel          = "INFO"
	defaultShutdownTimeout   = 10 * time.Second
)

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:8080",
}

// RateLimitConfig defines the per-IP request ceiling applied to the HTTP routes.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls.
type Config struct {
	Port              string
	AllowedOrigins    []string
	MaxMessageSize    int64
	MaxUsernameLength int
	SendBufferSize    int
	RateLimit         RateLimitConfig
	WelcomeMessage    string
	LogLevel          string
	ShutdownTimeout   time.Duration
}

// envConfig mirrors the environment. Zero values mean "use the default".
type envConfig struct {
	Port              string        `env:"SERVER_PORT"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS"`
	MaxMessageSize    int           `env:"MAX_MESSAGE_SIZE"`
	MaxUsernameLength int           `env:"MAX_USERNAME_LENGTH"`
	SendBufferSize    int           `env:"SEND_BUFFER_SIZE"`
	RateLimitBurst    int           `env:"HTTP_RATE_LIMIT_BURST"`
	RateLimitInterval time.Duration `env:"HTTP_RATE_LIMIT_INTERVAL"`
	WelcomeMessage    string        `env:"WELCOME_MESSAGE"`
	LogLevel          string        `env:"LOG_LEVEL"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := sanitizeConfig(Config{})
	return &cfg
}

// NewConfigFromEnv creates a Config from environment variables. Unset or
// non-positive values fall back to defaults; values that cannot be parsed
// are reported as an error.
func NewConfigFromEnv() (*Config, error) {
	var raw envConfig
	if _, err := env.UnmarshalFromEnviron(&raw); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	cfg := sanitizeConfig(Config{
		Port:              raw.Port,
		AllowedOrigins:    parseOrigins(raw.AllowedOrigins),
		MaxMessageSize:    int64(raw.MaxMessageSize),
		MaxUsernameLength: raw.MaxUsernameLength,
		SendBufferSize:    raw.SendBufferSize,
		RateLimit: RateLimitConfig{
			Burst:          raw.RateLimitBurst,
			RefillInterval: raw.RateLimitInterval,
		},
		WelcomeMessage:  raw.WelcomeMessage,
		LogLevel:        raw.LogLevel,
		ShutdownTimeout: raw.ShutdownTimeout,
	})
	return &cfg, nil
}

func sanitizeConfig(cfg Config) Config {
	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		cfg.Port = defaultPort
	} else if !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), defaultAllowedOrigins...)
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.MaxUsernameLength <= 0 {
		cfg.MaxUsernameLength = defaultMaxUsernameLength
	}

	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaultSendBufferSize
	}

	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = defaultRateLimitBurst
	}

	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = defaultRateLimitInterval
	}

	if cfg.WelcomeMessage == "" {
		cfg.WelcomeMessage = defaultWelcomeMessage
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	return cfg
}

func parseOrigins(origins string) []string {
	if strings.TrimSpace(origins) == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
