// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package memstore keeps users and events in process memory. It mirrors the
// SQLite repositories, including their guarded updates, and is safe for
// concurrent use.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/olegiv/eventhub/internal/model"
)

// Store holds users and events behind one mutex.
type Store struct {
	mu          sync.RWMutex
	users       map[int64]model.User
	events      map[int64]model.Event
	nextUserID  int64
	nextEventID int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:  make(map[int64]model.User),
		events: make(map[int64]model.Event),
	}
}

// Users returns the user repository view of s.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Events returns the event repository view of s.
func (s *Store) Events() *EventRepository { return &EventRepository{s: s} }

// UserRepository is the in-memory account store.
type UserRepository struct {
	s *Store
}

// Create stores u with a new ID. It fails with model.ErrDuplicateEmail when
// the normalized email is taken.
func (r *UserRepository) Create(_ context.Context, u *model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := model.NormalizeEmail(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == email {
			return nil, model.ErrDuplicateEmail
		}
	}

	r.s.nextUserID++
	now := time.Now().UTC()
	stored := *u
	stored.ID = r.s.nextUserID
	stored.Email = email
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.s.users[stored.ID] = stored

	out := stored
	return &out, nil
}

// ByID returns a copy of the account with id.
func (r *UserRepository) ByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

// ByEmail looks an account up by its normalized email.
func (r *UserRepository) ByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = model.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, model.ErrNotFound
}

// List returns all accounts ordered by ID.
func (r *UserRepository) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].IsApproved != users[j].IsApproved {
			return !users[i].IsApproved
		}
		return users[i].ID > users[j].ID
	})
	return users, nil
}

// SetApproved changes the approval flag of account id.
func (r *UserRepository) SetApproved(_ context.Context, id int64, approved bool) error {
	return r.update(id, func(u *model.User) { u.IsApproved = approved })
}

// UpdatePassword replaces the stored hash of account id.
func (r *UserRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	return r.update(id, func(u *model.User) { u.PasswordHash = passwordHash })
}

// TouchLastLogin records a successful login at at.
func (r *UserRepository) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(u *model.User) {
		u.LastLoginAt.Time = at.UTC()
		u.LastLoginAt.Valid = true
	})
}

// Count returns the number of accounts.
func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

// CountPending returns the number of unapproved accounts.
func (r *UserRepository) CountPending(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if !u.IsApproved {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) update(id int64, fn func(*model.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return model.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return nil
}

// EventRepository is the in-memory event store.
type EventRepository struct {
	s *Store
}

// Create stores a pending event at version 1.
func (r *EventRepository) Create(_ context.Context, e *model.Event) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextEventID++
	now := time.Now().UTC()
	stored := *e
	stored.ID = r.s.nextEventID
	stored.Date = e.Date.UTC()
	stored.Status = model.EventStatusPending
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.s.events[stored.ID] = stored

	return r.withOrganizer(stored), nil
}

// ByID returns a copy of event id.
func (r *EventRepository) ByID(_ context.Context, id int64) (*model.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return r.withOrganizer(e), nil
}

// List returns the events matching f ordered by date.
func (r *EventRepository) List(_ context.Context, f model.EventFilter) ([]model.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var events []model.Event
	for _, e := range r.s.events {
		if e.Date.Before(f.From) {
			continue
		}
		switch {
		case f.ConfirmedOnly:
			if !e.IsConfirmed() {
				continue
			}
		case f.VisibleTo != 0:
			if !e.IsConfirmed() && e.OrganizerID != f.VisibleTo {
				continue
			}
		}
		events = append(events, *r.withOrganizer(e))
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

// Update applies an edit when e.Version matches the stored version.
func (r *EventRepository) Update(_ context.Context, e *model.Event) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.events[e.ID]
	if !ok {
		return nil, model.ErrNotFound
	}
	if stored.Version != e.Version {
		return nil, model.ErrConcurrencyConflict
	}

	stored.Name = e.Name
	stored.Description = e.Description
	stored.Date = e.Date.UTC()
	stored.Location = e.Location
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()
	r.s.events[e.ID] = stored

	return r.withOrganizer(stored), nil
}

// SetStatus moves event id to status unless it is already confirmed.
func (r *EventRepository) SetStatus(_ context.Context, id int64, status string) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if stored.IsConfirmed() {
		return nil, model.ErrAlreadyFinalized
	}

	stored.Status = status
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()
	r.s.events[id] = stored

	return r.withOrganizer(stored), nil
}

// Delete removes event id.
func (r *EventRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}

// CountPending returns the number of pending events.
func (r *EventRepository) CountPending(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, e := range r.s.events {
		if e.Status == model.EventStatusPending {
			n++
		}
	}
	return n, nil
}

// withOrganizer fills the organizer's username. Callers hold the lock.
func (r *EventRepository) withOrganizer(e model.Event) *model.Event {
	if u, ok := r.s.users[e.OrganizerID]; ok {
		e.OrganizerName = u.Username
	}
	return &e
}
