// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Review source settings. When UpstreamURL is set, records come from the
	// upstream review service; otherwise they are served from Postgres.
	UpstreamURL     string
	UpstreamTimeout time.Duration
	DatabaseURL     string

	// Dashboard settings.
	PageSize         int
	DebounceInterval time.Duration

	// JWT settings.
	JWTPrivateKeyPath string // Path to Ed25519 private key PEM file.
	JWTPublicKeyPath  string // Path to Ed25519 public key PEM file.
	JWTExpiration     time.Duration

	// API key hashes (Argon2id, produced by auth.HashAPIKey). Tokens are
	// issued against these via POST /auth/token.
	AdminKeyHash  string
	ViewerKeyHash string

	// OTEL settings.
	OTELEndpoint string
	ServiceName  string

	// Rate limiting for the token endpoint.
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int

	// Operational settings.
	LogLevel            string
	MaxRequestBodyBytes int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                envInt("COURIERLENS_PORT", 8080),
		ReadTimeout:         envDuration("COURIERLENS_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        envDuration("COURIERLENS_WRITE_TIMEOUT", 30*time.Second),
		UpstreamURL:         envStr("COURIERLENS_UPSTREAM_URL", ""),
		UpstreamTimeout:     envDuration("COURIERLENS_UPSTREAM_TIMEOUT", 30*time.Second),
		DatabaseURL:         envStr("DATABASE_URL", ""),
		PageSize:            envInt("COURIERLENS_PAGE_SIZE", 10),
		DebounceInterval:    envDuration("COURIERLENS_DEBOUNCE_INTERVAL", 500*time.Millisecond),
		JWTPrivateKeyPath:   envStr("COURIERLENS_JWT_PRIVATE_KEY", ""),
		JWTPublicKeyPath:    envStr("COURIERLENS_JWT_PUBLIC_KEY", ""),
		JWTExpiration:       envDuration("COURIERLENS_JWT_EXPIRATION", 24*time.Hour),
		AdminKeyHash:        envStr("COURIERLENS_ADMIN_KEY_HASH", ""),
		ViewerKeyHash:       envStr("COURIERLENS_VIEWER_KEY_HASH", ""),
		RateLimitEnabled:    envBool("COURIERLENS_RATE_LIMIT_ENABLED", true),
		RateLimitRPS:        envFloat("COURIERLENS_RATE_LIMIT_RPS", 1),
		RateLimitBurst:      envInt("COURIERLENS_RATE_LIMIT_BURST", 20),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "courierlens"),
		LogLevel:            envStr("COURIERLENS_LOG_LEVEL", "info"),
		MaxRequestBodyBytes: int64(envInt("COURIERLENS_MAX_REQUEST_BODY_BYTES", 1*1024*1024)), // 1 MB default
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and coherent.
func (c Config) Validate() error {
	if c.UpstreamURL == "" && c.DatabaseURL == "" {
		return fmt.Errorf("config: COURIERLENS_UPSTREAM_URL or DATABASE_URL is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: COURIERLENS_PAGE_SIZE must be positive")
	}
	if c.DebounceInterval < 0 {
		return fmt.Errorf("config: COURIERLENS_DEBOUNCE_INTERVAL must not be negative")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: COURIERLENS_MAX_REQUEST_BODY_BYTES must be positive")
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		return fmt.Errorf("config: rate limit rps and burst must be positive when enabled")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
