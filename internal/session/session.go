// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session manager.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/eventhub/internal/model"
)

// Session data keys.
const (
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyEmail     = "email"
	KeyFlash     = "flash"
	KeyFlashType = "flash_type"
)

// DefaultIdleTimeout ends a session after this much inactivity.
const DefaultIdleTimeout = 30 * time.Minute

// Options configures New.
type Options struct {
	IsDev       bool
	IdleTimeout time.Duration
}

// New creates a session manager backed by the sessions table.
func New(db *sql.DB, opts Options) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = opts.IdleTimeout
	if sm.IdleTimeout <= 0 {
		sm.IdleTimeout = DefaultIdleTimeout
	}

	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !opts.IsDev
	if !opts.IsDev {
		// __Host- requires Secure, Path=/ and no Domain.
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// SignIn renews the session token and binds it to u.
func SignIn(ctx context.Context, sm *scs.SessionManager, u *model.User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyUserID, u.ID)
	sm.Put(ctx, KeyUsername, u.Username)
	sm.Put(ctx, KeyEmail, u.Email)
	return nil
}

// SignOut destroys the session.
func SignOut(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// UserID returns the signed-in user, or 0.
func UserID(ctx context.Context, sm *scs.SessionManager) int64 {
	return sm.GetInt64(ctx, KeyUserID)
}
