// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/eventhub/internal/model"
)

// UserRepository stores accounts in SQLite.
type UserRepository struct {
	queries *Queries
}

// NewUserRepository creates a UserRepository on db.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{queries: New(db)}
}

// Create inserts u. A taken email yields model.ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	now := time.Now().UTC()
	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		Username:     u.Username,
		Email:        model.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsApproved:   u.IsApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return nil, model.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return userFromRow(row), nil
}

// ByID returns the user with id.
func (r *UserRepository) ByID(ctx context.Context, id int64) (*model.User, error) {
	row, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "getting user")
	}
	return userFromRow(row), nil
}

// ByEmail returns the user registered with email, case-insensitively.
func (r *UserRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return nil, notFound(err, "getting user by email")
	}
	return userFromRow(row), nil
}

// List returns all users, pending accounts first.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *userFromRow(row))
	}
	return users, nil
}

// SetApproved sets the approval flag of user id.
func (r *UserRepository) SetApproved(ctx context.Context, id int64, approved bool) error {
	n, err := r.queries.SetUserApproved(ctx, SetUserApprovedParams{
		IsApproved: approved,
		UpdatedAt:  time.Now().UTC(),
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("setting user approval: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// PromoteToAdmin turns an existing account into an approved admin with
// the given password hash.
func (r *UserRepository) PromoteToAdmin(ctx context.Context, id int64, passwordHash string) error {
	if err := r.queries.PromoteToAdmin(ctx, PromoteToAdminParams{
		PasswordHash: passwordHash,
		UpdatedAt:    time.Now().UTC(),
		ID:           id,
	}); err != nil {
		return fmt.Errorf("promoting user: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored hash of user id.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if err := r.queries.UpdateUserPassword(ctx, UpdateUserPasswordParams{
		PasswordHash: passwordHash,
		UpdatedAt:    time.Now().UTC(),
		ID:           id,
	}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// TouchLastLogin records a successful login time.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	if err := r.queries.UpdateUserLastLogin(ctx, UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: at.UTC(), Valid: true},
		ID:          id,
	}); err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

// Count returns the number of accounts.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.queries.CountUsers(ctx)
}

// CountPending returns the number of accounts awaiting approval.
func (r *UserRepository) CountPending(ctx context.Context) (int64, error) {
	return r.queries.CountPendingUsers(ctx)
}

// EventRepository stores calendar events in SQLite.
type EventRepository struct {
	queries *Queries
}

// NewEventRepository creates an EventRepository on db.
func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{queries: New(db)}
}

// Create inserts e as a pending event and returns the stored row.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	now := time.Now().UTC()
	id, err := r.queries.CreateEvent(ctx, CreateEventParams{
		Uid:         e.UID,
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date.UTC(),
		Location:    e.Location,
		OrganizerID: e.OrganizerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return r.ByID(ctx, id)
}

// ByID returns the event with id.
func (r *EventRepository) ByID(ctx context.Context, id int64) (*model.Event, error) {
	row, err := r.queries.GetEvent(ctx, id)
	if err != nil {
		return nil, notFound(err, "getting event")
	}
	return eventFromRow(row), nil
}

// List returns events matching f ordered by date.
func (r *EventRepository) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	from := f.From.UTC()

	var (
		rows []Event
		err  error
	)
	switch {
	case f.ConfirmedOnly:
		rows, err = r.queries.ListEventsByStatus(ctx, ListEventsByStatusParams{
			Status: model.EventStatusConfirmed,
			From:   from,
		})
	case f.VisibleTo != 0:
		rows, err = r.queries.ListEventsVisibleTo(ctx, ListEventsVisibleToParams{
			OrganizerID: f.VisibleTo,
			From:        from,
		})
	default:
		rows, err = r.queries.ListEvents(ctx, from)
	}
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, *eventFromRow(row))
	}
	return events, nil
}

// Update writes the editable fields of e if e.Version matches the stored
// version. A version mismatch yields model.ErrConcurrencyConflict, unless the
// event no longer exists, which yields model.ErrNotFound.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) (*model.Event, error) {
	n, err := r.queries.UpdateEvent(ctx, UpdateEventParams{
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date.UTC(),
		Location:    e.Location,
		UpdatedAt:   time.Now().UTC(),
		ID:          e.ID,
		Version:     e.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}
	if n == 0 {
		return nil, r.missOrConflict(ctx, e.ID, model.ErrConcurrencyConflict)
	}
	return r.ByID(ctx, e.ID)
}

// SetStatus moves event id to status. Confirmed events are final: the
// update matches nothing and model.ErrAlreadyFinalized is returned.
func (r *EventRepository) SetStatus(ctx context.Context, id int64, status string) (*model.Event, error) {
	n, err := r.queries.SetEventStatus(ctx, SetEventStatusParams{
		Status:    status,
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	})
	if err != nil {
		return nil, fmt.Errorf("setting event status: %w", err)
	}
	if n == 0 {
		return nil, r.missOrConflict(ctx, id, model.ErrAlreadyFinalized)
	}
	return r.ByID(ctx, id)
}

// Delete removes event id.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// CountPending returns the number of events awaiting confirmation.
func (r *EventRepository) CountPending(ctx context.Context) (int64, error) {
	return r.queries.CountEventsByStatus(ctx, model.EventStatusPending)
}

// missOrConflict decides why a guarded update matched no row.
func (r *EventRepository) missOrConflict(ctx context.Context, id int64, conflict error) error {
	exists, err := r.queries.EventExists(ctx, id)
	if err != nil {
		return fmt.Errorf("checking event: %w", err)
	}
	if !exists {
		return model.ErrNotFound
	}
	return conflict
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation matches the constraint message shared by both SQLite drivers.
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

func userFromRow(row User) *model.User {
	return &model.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		IsApproved:   row.IsApproved,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLoginAt:  row.LastLoginAt,
	}
}

func eventFromRow(row Event) *model.Event {
	return &model.Event{
		ID:            row.ID,
		UID:           row.Uid,
		Name:          row.Name,
		Description:   row.Description,
		Date:          row.Date,
		Location:      row.Location,
		OrganizerID:   row.OrganizerID,
		OrganizerName: row.OrganizerName,
		Status:        row.Status,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
