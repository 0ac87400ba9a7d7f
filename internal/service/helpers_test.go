// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/eventhub/internal/auth"
	"github.com/olegiv/eventhub/internal/memstore"
	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/store"
	"github.com/olegiv/eventhub/internal/testutil"
)

type recordedActivity struct {
	level, category, message string
	userID                   *int64
}

// spyActivity captures activity entries.
type spyActivity struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (s *spyActivity) Log(_ context.Context, level, category, message string, userID *int64, _ map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, recordedActivity{level, category, message, userID})
	return nil
}

func (s *spyActivity) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.message
	}
	return out
}

// spyCalendar counts invalidations.
type spyCalendar struct {
	mu    sync.Mutex
	count int
}

func (s *spyCalendar) Invalidate(context.Context) {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
}

func (s *spyCalendar) invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// backend is a pair of repositories the services run on.
type backend struct {
	name   string
	users  UserRepository
	events EventRepository
}

func memBackend(*testing.T) backend {
	m := memstore.New()
	return backend{name: "memstore", users: m.Users(), events: m.Events()}
}

func sqliteBackend(t *testing.T) backend {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return backend{name: "sqlite", users: store.NewUserRepository(db), events: store.NewEventRepository(db)}
}

// backends lists every repository implementation.
var backends = []func(*testing.T) backend{memBackend, sqliteBackend}

// fixture wires every service over one backend.
type fixture struct {
	users     UserRepository
	eventRepo EventRepository
	activity  *spyActivity
	calendar  *spyCalendar
	accounts  *AccountService
	events    *EventService
	approval  *ApprovalService
	admin     *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, memBackend(t))
}

func newFixtureOn(t *testing.T, b backend) *fixture {
	t.Helper()

	f := &fixture{
		users:     b.users,
		eventRepo: b.events,
		activity:  &spyActivity{},
		calendar:  &spyCalendar{},
	}
	f.accounts = NewAccountService(f.users, f.activity)
	f.events = NewEventService(f.eventRepo, f.activity, f.calendar)
	f.approval = NewApprovalService(f.users, f.eventRepo, f.activity, f.calendar)
	f.admin = f.addUser(t, "admin@example.com", model.RoleAdmin, true)
	return f
}

func (f *fixture) addUser(t *testing.T, email, role string, approved bool) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("Password1")
	require.NoError(t, err)
	u, err := f.users.Create(context.Background(), &model.User{
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsApproved:   approved,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) addEvent(t *testing.T, organizer *model.User, name string) *model.Event {
	t.Helper()
	e, err := f.events.Create(context.Background(), organizer, EventInput{
		Name:     name,
		Date:     time.Now().Add(72 * time.Hour),
		Location: "Main hall",
	})
	require.NoError(t, err)
	return e
}
