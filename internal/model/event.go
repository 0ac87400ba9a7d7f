// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event confirmation states.
const (
	EventStatusPending   = "pending"
	EventStatusConfirmed = "confirmed"
	EventStatusDenied    = "denied"
)

// Event is a calendar event owned by its organizer.
type Event struct {
	ID            int64     `json:"id"`
	UID           string    `json:"uid"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	OrganizerID   int64     `json:"organizer_id"`
	OrganizerName string    `json:"organizer"`
	Status        string    `json:"status"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsConfirmed reports whether an administrator confirmed the event.
func (e *Event) IsConfirmed() bool {
	return e.Status == EventStatusConfirmed
}

// IsDenied reports whether an administrator denied the event.
func (e *Event) IsDenied() bool {
	return e.Status == EventStatusDenied
}

// EventFilter narrows an event listing. The zero value lists everything.
type EventFilter struct {
	// ConfirmedOnly keeps confirmed events only.
	ConfirmedOnly bool
	// VisibleTo, when non-zero, keeps confirmed events plus the events this
	// user organizes. Ignored when ConfirmedOnly is set.
	VisibleTo int64
	// From drops events dated before it.
	From time.Time
}
