// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/olegiv/eventhub/internal/metrics"
	"github.com/olegiv/eventhub/internal/model"
)

// maxLockout caps the exponential lockout backoff.
const maxLockout = 24 * time.Hour

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login POSTs per second per IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts within AttemptWindow locks the account.
	MaxFailedAttempts int
	// LockoutDuration is the first lockout; each further lockout doubles it.
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultLoginProtectionConfig allows a burst of 5 login POSTs per IP, then
// one every 2 seconds, and locks an account for 15 minutes after 5 failures
// in 15 minutes.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

func (c LoginProtectionConfig) withDefaults() LoginProtectionConfig {
	d := DefaultLoginProtectionConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = d.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = d.IPBurst
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = d.MaxFailedAttempts
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = d.LockoutDuration
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = d.AttemptWindow
	}
	return c
}

// failureRecord is the failed sign-in history of one email address.
type failureRecord struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtection throttles login POSTs per IP and locks accounts after
// repeated failures. Accounts are keyed by normalized email, so unknown
// addresses are throttled the same way as registered ones.
type LoginProtection struct {
	cfg        LoginProtectionConfig
	ipLimiters *limiterCache[string]
	now        func() time.Time

	mu       sync.Mutex
	failures map[string]*failureRecord
}

// NewLoginProtection creates a LoginProtection. Zero config fields take
// their defaults. Stale state is dropped by Prune.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	cfg = cfg.withDefaults()
	return &LoginProtection{
		cfg:        cfg,
		ipLimiters: newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		now:        time.Now,
		failures:   make(map[string]*failureRecord),
	}
}

// CheckIPRateLimit reports whether a login POST from ip may proceed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ipLimiters.get(ip).Allow()
}

// IsAccountLocked reports whether email is locked and for how much longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	rec, ok := lp.failures[model.NormalizeEmail(email)]
	if !ok {
		return false, 0
	}
	if remaining := rec.lockedUntil.Sub(lp.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt counts a failed sign-in. When it reaches the limit the
// account is locked and the lock duration is returned.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	email = model.NormalizeEmail(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	rec, ok := lp.failures[email]
	if !ok {
		rec = &failureRecord{windowStart: now}
		lp.failures[email] = rec
	}
	if now.Sub(rec.windowStart) > lp.cfg.AttemptWindow {
		rec.count = 0
		rec.windowStart = now
	}
	rec.count++

	if rec.count < lp.cfg.MaxFailedAttempts {
		slog.Debug("failed login recorded", "email", email, "count", rec.count)
		return false, 0
	}

	d := lockoutFor(lp.cfg.LockoutDuration, rec.lockouts)
	rec.lockedUntil = now.Add(d)
	rec.lockouts++
	rec.count = 0
	metrics.LoginLockouts.Inc()

	slog.Warn("account locked after failed login attempts",
		"category", model.ActivityCategoryAuth,
		"email", email,
		"lockouts", rec.lockouts,
		"duration", d,
	)
	return true, d
}

// lockoutFor doubles base for each earlier lockout, up to maxLockout.
func lockoutFor(base time.Duration, earlier int) time.Duration {
	d := base
	for range earlier {
		d *= 2
		if d >= maxLockout {
			return maxLockout
		}
	}
	return d
}

// RecordSuccessfulLogin forgets the failure history of email.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	delete(lp.failures, model.NormalizeEmail(email))
	lp.mu.Unlock()
}

// GetRemainingAttempts is how many more failures email may have before lockout.
func (lp *LoginProtection) GetRemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	rec, ok := lp.failures[model.NormalizeEmail(email)]
	if !ok || lp.now().Sub(rec.windowStart) > lp.cfg.AttemptWindow {
		return lp.cfg.MaxFailedAttempts
	}
	return max(lp.cfg.MaxFailedAttempts-rec.count, 0)
}

// Prune drops expired failure records and, past maxLimiters tracked IPs,
// all IP limiters. It returns the number of records removed.
func (lp *LoginProtection) Prune(maxLimiters int) int {
	if lp.ipLimiters.clearIfExceeds(maxLimiters) {
		slog.Info("cleared login IP limiters", "limit", maxLimiters)
	}

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()

	removed := 0
	for email, rec := range lp.failures {
		if now.After(rec.lockedUntil) && now.Sub(rec.windowStart) > lp.cfg.AttemptWindow {
			delete(lp.failures, email)
			removed++
		}
	}
	return removed
}

// Middleware throttles POSTs per client IP. Apply it to the login route.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if ip := GetClientIP(r); !lp.CheckIPRateLimit(ip) {
					slog.Warn("login rate limit exceeded", "category", model.ActivityCategoryAuth, "ip", ip)
					http.Error(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
