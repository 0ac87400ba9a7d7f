// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const eventSelect = `SELECT e.id, e.uid, e.name, e.description, e.date, e.location,
       e.organizer_id, COALESCE(u.username, ''), e.status, e.version, e.created_at, e.updated_at
FROM events e
LEFT JOIN users u ON u.id = e.organizer_id`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID,
		&e.Uid,
		&e.Name,
		&e.Description,
		&e.Date,
		&e.Location,
		&e.OrganizerID,
		&e.OrganizerName,
		&e.Status,
		&e.Version,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (q *Queries) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createEvent = `-- name: CreateEvent :one
INSERT INTO events (uid, name, description, date, location, organizer_id, status, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 'pending', 1, ?, ?)
RETURNING id`

type CreateEventParams struct {
	Uid         string
	Name        string
	Description string
	Date        time.Time
	Location    string
	OrganizerID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateEvent inserts a pending event and returns its id.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createEvent,
		arg.Uid,
		arg.Name,
		arg.Description,
		arg.Date,
		arg.Location,
		arg.OrganizerID,
		arg.CreatedAt,
		arg.UpdatedAt,
	).Scan(&id)
	return id, err
}

const getEvent = `-- name: GetEvent :one
` + eventSelect + ` WHERE e.id = ?`

func (q *Queries) GetEvent(ctx context.Context, id int64) (Event, error) {
	return scanEvent(q.db.QueryRowContext(ctx, getEvent, id))
}

const eventExists = `-- name: EventExists :one
SELECT EXISTS(SELECT 1 FROM events WHERE id = ?)`

func (q *Queries) EventExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, eventExists, id).Scan(&exists)
	return exists, err
}

const listEvents = `-- name: ListEvents :many
` + eventSelect + ` WHERE e.date >= ? ORDER BY e.date ASC, e.id ASC`

func (q *Queries) ListEvents(ctx context.Context, from time.Time) ([]Event, error) {
	return q.queryEvents(ctx, listEvents, from)
}

const listEventsByStatus = `-- name: ListEventsByStatus :many
` + eventSelect + ` WHERE e.status = ? AND e.date >= ? ORDER BY e.date ASC, e.id ASC`

type ListEventsByStatusParams struct {
	Status string
	From   time.Time
}

func (q *Queries) ListEventsByStatus(ctx context.Context, arg ListEventsByStatusParams) ([]Event, error) {
	return q.queryEvents(ctx, listEventsByStatus, arg.Status, arg.From)
}

const listEventsVisibleTo = `-- name: ListEventsVisibleTo :many
` + eventSelect + ` WHERE (e.status = 'confirmed' OR e.organizer_id = ?) AND e.date >= ?
ORDER BY e.date ASC, e.id ASC`

type ListEventsVisibleToParams struct {
	OrganizerID int64
	From        time.Time
}

func (q *Queries) ListEventsVisibleTo(ctx context.Context, arg ListEventsVisibleToParams) ([]Event, error) {
	return q.queryEvents(ctx, listEventsVisibleTo, arg.OrganizerID, arg.From)
}

const updateEvent = `-- name: UpdateEvent :execrows
UPDATE events
SET name = ?, description = ?, date = ?, location = ?, version = version + 1, updated_at = ?
WHERE id = ? AND version = ?`

type UpdateEventParams struct {
	Name        string
	Description string
	Date        time.Time
	Location    string
	UpdatedAt   time.Time
	ID          int64
	Version     int64
}

// UpdateEvent writes the editable fields only when the stored version still
// equals arg.Version. It never touches organizer_id or status.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateEvent,
		arg.Name,
		arg.Description,
		arg.Date,
		arg.Location,
		arg.UpdatedAt,
		arg.ID,
		arg.Version,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setEventStatus = `-- name: SetEventStatus :execrows
UPDATE events
SET status = ?, version = version + 1, updated_at = ?
WHERE id = ? AND status <> 'confirmed'`

type SetEventStatusParams struct {
	Status    string
	UpdatedAt time.Time
	ID        int64
}

// SetEventStatus changes the confirmation status unless the event is
// already confirmed.
func (q *Queries) SetEventStatus(ctx context.Context, arg SetEventStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setEventStatus, arg.Status, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteEvent = `-- name: DeleteEvent :execrows
DELETE FROM events WHERE id = ?`

func (q *Queries) DeleteEvent(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEvent, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countEventsByStatus = `-- name: CountEventsByStatus :one
SELECT COUNT(*) FROM events WHERE status = ?`

func (q *Queries) CountEventsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countEventsByStatus, status).Scan(&count)
	return count, err
}
