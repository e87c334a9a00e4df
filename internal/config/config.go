package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Server
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
	AllowedOrigins    []string

	// Identity provider. Both values must be set to leave mock mode.
	AuthProviderURL string
	AuthProviderKey string
	SessionSecret   string
	SessionTTL      time.Duration

	// Simulated latencies of the stub integrations
	PaymentDelay      time.Duration
	EmailDelay        time.Duration
	PaymentEmailDelay time.Duration

	// Auth endpoints rate limit, per client address
	AuthRateRPS   float64
	AuthRateBurst int

	// Warnings collected while loading; logged by the caller
	Warnings []string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any key lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, defaultValue string) string {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}

		return defaultValue
	}

	cfg := &Config{
		Host:             get("HTTP_HOST", "localhost"),
		Port:             get("HTTP_PORT", "8092"),
		LivenessEndpoint: get("LIVENESS_ENDPOINT", "/liveness"),
		AllowedOrigins:   splitList(get("CORS_ALLOWED_ORIGINS", "*")),

		AuthProviderURL: get("AUTH_PROVIDER_URL", get("SUPABASE_URL", "")),
		AuthProviderKey: get("AUTH_PROVIDER_KEY", get("SUPABASE_ANON_KEY", "")),
		SessionSecret:   get("SESSION_SECRET", ""),
	}

	var err error

	durations := []struct {
		key   string
		def   string
		field *time.Duration
	}{
		{"HTTP_READ_HEADER_TIMEOUT", "20s", &cfg.ReadHeaderTimeout},
		{"SESSION_TTL", "24h", &cfg.SessionTTL},
		{"PAYMENT_DELAY", "2s", &cfg.PaymentDelay},
		{"EMAIL_DELAY", "1500ms", &cfg.EmailDelay},
		{"PAYMENT_EMAIL_DELAY", "1s", &cfg.PaymentEmailDelay},
	}

	for _, d := range durations {
		if *d.field, err = time.ParseDuration(get(d.key, d.def)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}

		if *d.field < 0 {
			return nil, fmt.Errorf("%s must not be negative: %w", d.key, ErrInvalidValue)
		}
	}

	if cfg.AuthRateRPS, err = strconv.ParseFloat(get("AUTH_RATE_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("parse AUTH_RATE_RPS: %w", err)
	}

	if cfg.AuthRateBurst, err = strconv.Atoi(get("AUTH_RATE_BURST", "10")); err != nil {
		return nil, fmt.Errorf("parse AUTH_RATE_BURST: %w", err)
	}

	if cfg.MockAuth() {
		cfg.Warnings = append(cfg.Warnings, "AUTH_PROVIDER_URL or AUTH_PROVIDER_KEY not set, using mock identity provider")
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "afrotour-dev-session-secret"
		cfg.Warnings = append(cfg.Warnings, "SESSION_SECRET not set, using development secret")
	}

	return cfg, nil
}

// MockAuth reports whether the identity provider configuration is incomplete.
func (c *Config) MockAuth() bool {
	return c.AuthProviderURL == "" || c.AuthProviderKey == ""
}

func splitList(value string) []string {
	var out []string

	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
