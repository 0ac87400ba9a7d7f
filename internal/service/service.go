// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements registration, authentication, the event
// registry and the approval workflow on top of injected repositories.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/eventhub/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetApproved(ctx context.Context, id int64, approved bool) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	Count(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}

// EventRepository is the event store. Update and SetStatus are guarded
// writes: Update fails with model.ErrConcurrencyConflict on a version
// mismatch and SetStatus fails with model.ErrAlreadyFinalized on a confirmed
// event. Both report model.ErrNotFound for a missing row.
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	ByID(ctx context.Context, id int64) (*model.Event, error)
	List(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	Update(ctx context.Context, e *model.Event) (*model.Event, error)
	SetStatus(ctx context.Context, id int64, status string) (*model.Event, error)
	Delete(ctx context.Context, id int64) error
	CountPending(ctx context.Context) (int64, error)
}

// ActivityRecorder writes audit entries.
type ActivityRecorder interface {
	Log(ctx context.Context, level, category, message string, userID *int64, metadata map[string]any) error
}

// CalendarInvalidator drops cached calendar data.
type CalendarInvalidator interface {
	Invalidate(ctx context.Context)
}

type ctxKey int

const clientIPKey ctxKey = iota

// WithClientIP stores the client address for activity entries.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the address stored by WithClientIP.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

func record(ctx context.Context, a ActivityRecorder, level, category, message string, userID *int64, metadata map[string]any) {
	if a == nil {
		return
	}
	// Debug keeps the failure out of the activity log mirror.
	if err := a.Log(ctx, level, category, message, userID, metadata); err != nil {
		slog.Debug("activity entry dropped", "message", message, "error", err)
	}
}

func userRef(u *model.User) *int64 {
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}
