// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/store"
)

// ActivityService records and reads the audit log.
type ActivityService struct {
	queries *store.Queries
}

// NewActivityService creates an ActivityService.
func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{
		queries: store.New(db),
	}
}

// Log writes an audit entry. The client address is taken from ctx.
func (s *ActivityService) Log(ctx context.Context, level, category, message string, userID *int64, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	err := s.queries.CreateActivity(ctx, store.CreateActivityParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		IpAddress: ClientIP(ctx),
		Metadata:  metadataJSON,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	return nil
}

// LogAuth logs an authentication entry.
func (s *ActivityService) LogAuth(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.Log(ctx, level, model.ActivityCategoryAuth, message, userID, metadata)
}

// LogUser logs an account entry.
func (s *ActivityService) LogUser(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.Log(ctx, level, model.ActivityCategoryUser, message, userID, metadata)
}

// LogSystem logs a system entry.
func (s *ActivityService) LogSystem(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.Log(ctx, level, model.ActivityCategorySystem, message, nil, metadata)
}

// List returns entries newest first.
func (s *ActivityService) List(ctx context.Context, limit, offset int) ([]model.Activity, error) {
	rows, err := s.queries.ListActivity(ctx, store.ListActivityParams{
		Limit:  int64(limit),
		Offset: int64(offset),
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.Activity, 0, len(rows))
	for _, r := range rows {
		items = append(items, model.Activity{
			ID:        r.ID,
			Level:     r.Level,
			Category:  r.Category,
			Message:   r.Message,
			UserID:    r.UserID,
			IPAddress: r.IpAddress,
			Metadata:  r.Metadata,
			CreatedAt: r.CreatedAt,
		})
	}
	return items, nil
}

// Count returns the number of entries.
func (s *ActivityService) Count(ctx context.Context) (int64, error) {
	return s.queries.CountActivity(ctx)
}

// Purge removes entries older than the given age and returns how many were removed.
func (s *ActivityService) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.queries.DeleteActivityBefore(ctx, time.Now().UTC().Add(-olderThan))
}
