// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads eventhub settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/eventhub/internal/auth"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"EVENTHUB_DB_PATH" envDefault:"./data/eventhub.db"`
	SessionSecret string `env:"EVENTHUB_SESSION_SECRET,required"`
	ServerHost    string `env:"EVENTHUB_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"EVENTHUB_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"EVENTHUB_ENV" envDefault:"development"`
	LogLevel      string `env:"EVENTHUB_LOG_LEVEL"`

	// Sessions expire after this much inactivity.
	SessionIdleTimeout time.Duration `env:"EVENTHUB_SESSION_IDLE_TIMEOUT" envDefault:"30m"`

	// Bootstrap administrator, created or promoted at startup.
	AdminEmail    string `env:"DEFAULT_ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// Cache configuration
	RedisURL         string        `env:"EVENTHUB_REDIS_URL"`
	CachePrefix      string        `env:"EVENTHUB_CACHE_PREFIX" envDefault:"eventhub:"`
	CalendarCacheTTL time.Duration `env:"EVENTHUB_CALENDAR_CACHE_TTL" envDefault:"5m"`

	ActivityRetention time.Duration `env:"EVENTHUB_ACTIVITY_RETENTION" envDefault:"720h"`
	MetricsEnabled    bool          `env:"EVENTHUB_METRICS_ENABLED" envDefault:"true"`
	TrustedOrigins    []string      `env:"EVENTHUB_TRUSTED_ORIGINS" envSeparator:","`
	RequestLogging    bool          `env:"EVENTHUB_REQUEST_LOGGING" envDefault:"true"`
	SiteURL           string        `env:"EVENTHUB_SITE_URL"`

	// Global per-IP request budget. Zero RPS disables it.
	RateLimitRPS   float64 `env:"EVENTHUB_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"EVENTHUB_RATE_LIMIT_BURST" envDefault:"40"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// HasAdminBootstrap reports whether bootstrap admin credentials are set.
func (c Config) HasAdminBootstrap() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// SlogLevel maps LogLevel to a slog level. An empty value means debug in
// development and info otherwise.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if c.IsDevelopment() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("EVENTHUB_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("EVENTHUB_DB_PATH must not be empty")
	}

	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("EVENTHUB_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("EVENTHUB_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("EVENTHUB_SESSION_IDLE_TIMEOUT must be positive, got %s", c.SessionIdleTimeout)
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("DEFAULT_ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.AdminPassword != "" {
		if err := auth.ValidatePasswordPolicy(c.AdminPassword); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD: %w", err)
		}
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
