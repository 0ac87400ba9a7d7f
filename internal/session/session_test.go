// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/eventhub/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_DevMode(t *testing.T) {
	sm := New(setupTestDB(t), Options{IsDev: true})

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name == "__Host-session" {
		t.Error("expected default cookie name in dev mode")
	}
	if sm.Store == nil {
		t.Error("expected Store to be initialized")
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(setupTestDB(t), Options{IsDev: false})

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-session" {
		t.Errorf("expected __Host-session cookie name, got %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_Timeouts(t *testing.T) {
	db := setupTestDB(t)

	sm := New(db, Options{IsDev: true})
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if sm.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("IdleTimeout = %v, want %v", sm.IdleTimeout, DefaultIdleTimeout)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}

	sm = New(db, Options{IsDev: true, IdleTimeout: 10 * time.Minute})
	if sm.IdleTimeout != 10*time.Minute {
		t.Errorf("IdleTimeout = %v, want 10m", sm.IdleTimeout)
	}
}

func TestSignInSignOut(t *testing.T) {
	sm := New(setupTestDB(t), Options{IsDev: true})

	var token string
	signIn := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := UserID(r.Context(), sm); got != 0 {
			t.Errorf("UserID before sign-in = %d", got)
		}
		if err := SignIn(r.Context(), sm, &model.User{ID: 42, Username: "alice", Email: "alice@example.com"}); err != nil {
			t.Fatalf("SignIn: %v", err)
		}
	}))

	rec := httptest.NewRecorder()
	signIn.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/account/login", nil))
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.Cookie.Name {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("no session cookie issued")
	}

	check := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := UserID(r.Context(), sm); got != 42 {
			t.Errorf("UserID = %d, want 42", got)
		}
		if got := sm.GetString(r.Context(), KeyUsername); got != "alice" {
			t.Errorf("username = %q, want alice", got)
		}
		if err := SignOut(r.Context(), sm); err != nil {
			t.Fatalf("SignOut: %v", err)
		}
		if got := UserID(r.Context(), sm); got != 0 {
			t.Errorf("UserID after sign-out = %d", got)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.Cookie.Name, Value: token})
	check.ServeHTTP(httptest.NewRecorder(), req)
}
