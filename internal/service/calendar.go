// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/eventhub/internal/cache"
	"github.com/olegiv/eventhub/internal/model"
)

const calendarFeedKey = "calendar:feed"

// CalendarEntry is one item of the public calendar feed.
type CalendarEntry struct {
	UID      string `json:"uid"`
	Title    string `json:"title"`
	Start    string `json:"start"` // yyyy-mm-dd
	Location string `json:"location"`
	URL      string `json:"url"`
}

// CalendarService serves the confirmed-events feed from a cache.
type CalendarService struct {
	events EventRepository
	cache  cache.Cache
	ttl    time.Duration
}

// NewCalendarService creates a CalendarService. A nil cache disables caching.
func NewCalendarService(events EventRepository, c cache.Cache, ttl time.Duration) *CalendarService {
	return &CalendarService{events: events, cache: c, ttl: ttl}
}

// Feed returns the JSON-encoded feed of confirmed events.
func (s *CalendarService) Feed(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, calendarFeedKey)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.Warn("calendar cache read failed", "error", err)
		}
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding calendar feed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, calendarFeedKey, data, s.ttl); err != nil {
			slog.Warn("calendar cache write failed", "error", err)
		}
	}
	return data, nil
}

// Entries builds the feed from the registry, bypassing the cache.
func (s *CalendarService) Entries(ctx context.Context) ([]CalendarEntry, error) {
	events, err := s.events.List(ctx, model.EventFilter{ConfirmedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("listing confirmed events: %w", err)
	}

	entries := make([]CalendarEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, CalendarEntry{
			UID:      e.UID,
			Title:    e.Name,
			Start:    e.Date.Format(time.DateOnly),
			Location: e.Location,
			URL:      fmt.Sprintf("/events/%d", e.ID),
		})
	}
	return entries, nil
}

// Invalidate drops the cached feed.
func (s *CalendarService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, calendarFeedKey); err != nil {
		slog.Warn("calendar cache invalidation failed", "error", err)
	}
}
