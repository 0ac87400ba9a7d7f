// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/service"
	"github.com/olegiv/eventhub/internal/testutil"
)

func TestAdmin_RequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	testutil.CreateUser(t, app.db, "bob", "bob@example.com", model.RoleUser, true)
	bob := app.loggedIn(t, "bob@example.com")

	for _, path := range []string{"/admin", "/admin/users", "/admin/events", "/admin/activity"} {
		resp, _ := app.get(t, bob, path)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)

		resp, _ = app.get(t, app.client(t), path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
	}

	resp, _ := app.post(t, bob, idPath("/admin/approveUser", app.admin.ID, ""), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	entries, err := service.NewActivityService(app.db).List(context.Background(), 100, 0)
	require.NoError(t, err)
	var denials int
	for _, e := range entries {
		if strings.HasPrefix(e.Message, "Access denied") {
			denials++
		}
	}
	assert.Equal(t, 5, denials)
}

func TestConfirmEvent_Latch(t *testing.T) {
	app := newTestApp(t)
	bob := testutil.CreateUser(t, app.db, "bob", "bob@example.com", model.RoleUser, true)
	e := app.createEvent(t, bob, "Concert", 5)
	admin := app.loggedIn(t, "admin@example.com")

	resp, _ := app.post(t, admin, idPath("/admin/confirmEvent", e.ID, "?isConfirmed=true"), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/events", resp.Header.Get("Location"))
	assert.Equal(t, model.EventStatusConfirmed, app.event(t, e.ID).Status)

	_, body := app.get(t, admin, "/admin/events")
	assert.Contains(t, body, "confirmed")

	resp, _ = app.post(t, admin, idPath("/admin/confirmEvent", e.ID, "?isConfirmed=false"), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = app.get(t, admin, "/admin/events")
	assert.Contains(t, body, "already confirmed")
	assert.Equal(t, model.EventStatusConfirmed, app.event(t, e.ID).Status)

	resp, _ = app.post(t, admin, idPath("/admin/confirmEvent", e.ID, "?isConfirmed=true"), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = app.get(t, admin, "/admin/events")
	assert.Contains(t, body, "already confirmed")
}

func TestConfirmEvent_DeniedCanBeConfirmed(t *testing.T) {
	app := newTestApp(t)
	bob := testutil.CreateUser(t, app.db, "bob", "bob@example.com", model.RoleUser, true)
	e := app.createEvent(t, bob, "Concert", 5)
	admin := app.loggedIn(t, "admin@example.com")

	resp, _ := app.post(t, admin, idPath("/admin/confirmEvent", e.ID, "?isConfirmed=false"), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, model.EventStatusDenied, app.event(t, e.ID).Status)

	resp, _ = app.post(t, admin, idPath("/admin/confirmEvent", e.ID, "?isConfirmed=true"), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, model.EventStatusConfirmed, app.event(t, e.ID).Status)
}

func TestConfirmEvent_BadRequests(t *testing.T) {
	app := newTestApp(t)
	bob := testutil.CreateUser(t, app.db, "bob", "bob@example.com", model.RoleUser, true)
	e := app.createEvent(t, bob, "Concert", 5)
	admin := app.loggedIn(t, "admin@example.com")

	resp, _ := app.post(t, admin, idPath("/admin/confirmEvent", e.ID, ""), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = app.post(t, admin, idPath("/admin/confirmEvent", e.ID, "?isConfirmed=maybe"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = app.post(t, admin, "/admin/confirmEvent/9999?isConfirmed=true", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body := app.get(t, admin, "/admin/events")
	assert.Contains(t, body, "Event not found")

	assert.Equal(t, model.EventStatusPending, app.event(t, e.ID).Status)
}

func TestConfirmEvent_InvalidatesCalendarFeed(t *testing.T) {
	app := newTestApp(t)
	bob := testutil.CreateUser(t, app.db, "bob", "bob@example.com", model.RoleUser, true)
	e := app.createEvent(t, bob, "Concert", 5)
	anon := app.client(t)

	_, body := app.get(t, anon, "/events/calendar/feed")
	assert.Equal(t, "[]", strings.TrimSpace(body))

	admin := app.loggedIn(t, "admin@example.com")
	resp, _ := app.post(t, admin, idPath("/admin/confirmEvent", e.ID, "?isConfirmed=true"), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = app.get(t, anon, "/events/calendar/feed")
	var entries []service.CalendarEntry
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Concert", entries[0].Title)
}

func TestRejectUser(t *testing.T) {
	app := newTestApp(t)
	bob := testutil.CreateUser(t, app.db, "bob", "bob@example.com", model.RoleUser, true)
	admin := app.loggedIn(t, "admin@example.com")

	resp, _ := app.post(t, admin, idPath("/admin/rejectUser", bob.ID, ""), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	u, err := app.users.ByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.False(t, u.IsApproved)

	resp, _ = app.post(t, admin, idPath("/admin/rejectUser", app.admin.ID, ""), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body := app.get(t, admin, "/admin/users")
	assert.Contains(t, body, "Administrator accounts cannot be rejected")

	resp, _ = app.post(t, admin, "/admin/approveUser/9999", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = app.get(t, admin, "/admin/users")
	assert.Contains(t, body, "User not found")
}

func TestAdminEvents_Sort(t *testing.T) {
	app := newTestApp(t)
	bob := testutil.CreateUser(t, app.db, "bob", "bob@example.com", model.RoleUser, true)
	app.createEvent(t, bob, "Alpha", 2)
	app.createEvent(t, bob, "Bravo", 9)
	admin := app.loggedIn(t, "admin@example.com")

	resp, body := app.get(t, admin, "/admin/events?sort=date:desc,name")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, strings.Index(body, "Bravo"), strings.Index(body, "Alpha"))
	assert.Contains(t, body, `value="date:desc,name"`)

	resp, body = app.get(t, admin, "/admin/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, strings.Index(body, "Alpha"), strings.Index(body, "Bravo"))

	resp, body = app.get(t, admin, "/admin/events?sort=color")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "unknown sort field")
}

func TestAdminDashboardAndActivity(t *testing.T) {
	app := newTestApp(t)
	testutil.CreateUser(t, app.db, "pat", "pat@example.com", model.RoleUser, false)
	bob := testutil.CreateUser(t, app.db, "bob", "bob@example.com", model.RoleUser, true)
	app.createEvent(t, bob, "Waiting room", 3)
	admin := app.loggedIn(t, "admin@example.com")

	resp, body := app.get(t, admin, "/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "pat@example.com")
	assert.Contains(t, body, "Waiting room")

	resp, body = app.get(t, admin, "/admin/activity")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "User logged in")
}
