// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the activity log, so administrators see them on /admin/activity.
package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/olegiv/eventhub/internal/middleware"
	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/service"
)

// ActivityLogHandler is a slog.Handler that wraps another handler and also
// writes records at or above its level to the activity log.
type ActivityLogHandler struct {
	inner    slog.Handler
	activity *service.ActivityService
	level    slog.Level
	attrs    []slog.Attr
}

// NewActivityLogHandler mirrors WARN and above to activity.
func NewActivityLogHandler(inner slog.Handler, activity *service.ActivityService) *ActivityLogHandler {
	return NewActivityLogHandlerWithLevel(inner, activity, slog.LevelWarn)
}

// NewActivityLogHandlerWithLevel mirrors records at or above level to activity.
func NewActivityLogHandlerWithLevel(inner slog.Handler, activity *service.ActivityService, level slog.Level) *ActivityLogHandler {
	return &ActivityLogHandler{
		inner:    inner,
		activity: activity,
		level:    level,
	}
}

// Enabled implements slog.Handler.
func (h *ActivityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ActivityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeActivity(ctx, r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ActivityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ActivityLogHandler{
		inner:    h.inner.WithAttrs(attrs),
		activity: h.activity,
		level:    h.level,
		attrs:    merged,
	}
}

// WithGroup implements slog.Handler.
func (h *ActivityLogHandler) WithGroup(name string) slog.Handler {
	return &ActivityLogHandler{
		inner:    h.inner.WithGroup(name),
		activity: h.activity,
		level:    h.level,
		attrs:    h.attrs,
	}
}

func (h *ActivityLogHandler) writeActivity(ctx context.Context, r slog.Record) {
	category := ""
	metadata := make(map[string]any)

	collect := func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return true
		}
		metadata[a.Key] = a.Value.String()
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	if category == "" {
		category = inferCategory(r.Message)
	}
	if path := middleware.GetRequestPath(ctx); path != "" {
		metadata["path"] = path
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	// The entry must survive a cancelled request; the client address stays in ctx.
	_ = h.activity.Log(context.WithoutCancel(ctx), levelName(r.Level), category, r.Message, nil, metadata)
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.ActivityLevelError
	case level >= slog.LevelWarn:
		return model.ActivityLevelWarning
	default:
		return model.ActivityLevelInfo
	}
}

// inferCategory guesses a category from common words in the message.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout"):
		return model.ActivityCategoryAuth
	case strings.Contains(msg, "event") || strings.Contains(msg, "calendar"):
		return model.ActivityCategoryEvent
	case strings.Contains(msg, "approv") || strings.Contains(msg, "reject") || strings.Contains(msg, "confirm"):
		return model.ActivityCategoryWorkflow
	case strings.Contains(msg, "user") || strings.Contains(msg, "account"):
		return model.ActivityCategoryUser
	default:
		return model.ActivityCategorySystem
	}
}
