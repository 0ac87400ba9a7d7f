// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/eventhub/internal/cache"
	"github.com/olegiv/eventhub/internal/middleware"
	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/render"
	"github.com/olegiv/eventhub/internal/service"
	"github.com/olegiv/eventhub/internal/session"
	"github.com/olegiv/eventhub/internal/store"
	"github.com/olegiv/eventhub/internal/testutil"
	"github.com/olegiv/eventhub/internal/version"
	"github.com/olegiv/eventhub/web"
)

// testApp is the full router on a temporary database.
type testApp struct {
	db     *sql.DB
	users  *store.UserRepository
	events *store.EventRepository
	server *httptest.Server
	admin  *model.User
}

type appOption func(*Deps)

func withLoginProtection(lp *middleware.LoginProtection) appOption {
	return func(d *Deps) { d.LoginProtection = lp }
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	sm := session.New(db, session.Options{IsDev: true})

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm, IsDev: true})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	users := store.NewUserRepository(db)
	events := store.NewEventRepository(db)
	activity := service.NewActivityService(db)
	memCache := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = memCache.Close() })
	calendar := service.NewCalendarService(events, memCache, time.Minute)

	deps := Deps{
		DB:             db,
		Sessions:       sm,
		Renderer:       renderer,
		Users:          users,
		Accounts:       service.NewAccountService(users, activity),
		Events:         service.NewEventService(events, activity, calendar),
		Approval:       service.NewApprovalService(users, events, activity, calendar),
		Calendar:       calendar,
		Activity:       activity,
		IsDev:          true,
		CSRFKey:        []byte("test-Secret-key-32-bytes-long!!!"),
		MetricsEnabled: true,
		Version:        version.Info{Version: "v0.0.0-test"},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	app := &testApp{
		db:     db,
		users:  users,
		events: events,
		server: httptest.NewServer(NewRouter(deps)),
	}
	t.Cleanup(app.server.Close)

	app.admin = testutil.CreateUser(t, db, "admin", "admin@example.com", model.RoleAdmin, true)
	return app
}

// client returns a browser-like client with its own cookie jar that does
// not follow redirects.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// loggedIn returns a client signed in as email with password "Password1".
func (a *testApp) loggedIn(t *testing.T, email string) *http.Client {
	t.Helper()
	c := a.client(t)
	resp, body := a.post(t, c, "/account/login", url.Values{"email": {email}, "password": {"Password1"}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("login %s: status %d, location %q, body: %s", email, resp.StatusCode, resp.Header.Get("Location"), body)
	}
	return c
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (a *testApp) post(t *testing.T, c *http.Client, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.Post(a.server.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

// createEvent stores an event for organizer directly, dated days from now.
func (a *testApp) createEvent(t *testing.T, organizer *model.User, name string, days int) *model.Event {
	t.Helper()
	e, err := a.events.Create(context.Background(), &model.Event{
		UID:         "uid-" + name,
		Name:        name,
		Date:        time.Now().UTC().AddDate(0, 0, days).Truncate(24 * time.Hour),
		Location:    "Main hall",
		OrganizerID: organizer.ID,
	})
	if err != nil {
		t.Fatalf("creating event %s: %v", name, err)
	}
	return e
}

func (a *testApp) confirm(t *testing.T, e *model.Event) {
	t.Helper()
	if _, err := a.events.SetStatus(context.Background(), e.ID, model.EventStatusConfirmed); err != nil {
		t.Fatalf("confirming %s: %v", e.Name, err)
	}
}

func (a *testApp) event(t *testing.T, id int64) *model.Event {
	t.Helper()
	e, err := a.events.ByID(context.Background(), id)
	if err != nil {
		t.Fatalf("loading event %d: %v", id, err)
	}
	return e
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(b)
}

func idPath(prefix string, id int64, suffix string) string {
	return prefix + "/" + strconv.FormatInt(id, 10) + suffix
}
