// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// User is a row of the users table.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsApproved   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  sql.NullTime
}

// Event is a row of the events table joined with its organizer's username.
type Event struct {
	ID            int64
	Uid           string
	Name          string
	Description   string
	Date          time.Time
	Location      string
	OrganizerID   int64
	OrganizerName string
	Status        string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Activity is a row of the activity table.
type Activity struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IpAddress string
	Metadata  string
	CreatedAt time.Time
}
