// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/service"
	"github.com/olegiv/eventhub/internal/session"
)

type stubUsers map[int64]*model.User

func (s stubUsers) ByID(_ context.Context, id int64) (*model.User, error) {
	if id == 99 {
		return nil, errors.New("database is locked")
	}
	u, ok := s[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return u, nil
}

type stubActivity struct{ messages []string }

func (s *stubActivity) Log(_ context.Context, _, _, message string, _ *int64, _ map[string]any) error {
	s.messages = append(s.messages, message)
	return nil
}

func withUser(r *http.Request, u *model.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ContextKeyUser, u))
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGetUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetUser(req) != nil || GetUserID(req) != 0 {
		t.Error("expected no user in empty context")
	}

	req = withUser(req, &model.User{ID: 123, Email: "alice@example.com"})
	if u := GetUser(req); u == nil || u.ID != 123 {
		t.Errorf("GetUser() = %v, want user 123", u)
	}
	if GetUserID(req) != 123 {
		t.Errorf("GetUserID() = %d, want 123", GetUserID(req))
	}
}

func TestAuth(t *testing.T) {
	handler := Auth(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events/create", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != LoginPath {
		t.Errorf("anonymous = %d %q, want redirect to %s", rr.Code, rr.Header().Get("Location"), LoginPath)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, withUser(httptest.NewRequest(http.MethodGet, "/events/create", nil), &model.User{ID: 1}))
	if rr.Code != http.StatusOK {
		t.Errorf("signed in = %d, want 200", rr.Code)
	}
}

func TestLoadUser(t *testing.T) {
	users := stubUsers{
		1: {ID: 1, Email: "bob@example.com", Role: model.RoleUser, IsApproved: true},
		2: {ID: 2, Email: "carol@example.com", Role: model.RoleUser, IsApproved: false},
	}

	tests := []struct {
		name          string
		sessionUserID int64
		wantStatus    int
		wantUser      bool
		wantSession   bool
	}{
		{"anonymous", 0, http.StatusOK, false, false},
		{"approved", 1, http.StatusOK, true, true},
		{"unapproved", 2, http.StatusOK, false, false},
		{"deleted", 7, http.StatusOK, false, false},
		{"lookup failure", 99, http.StatusInternalServerError, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := scs.New()
			sm.Store = memstore.New()

			var gotUser *model.User
			var sessionID int64
			final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = GetUser(r)
				sessionID = session.UserID(r.Context(), sm)
				w.WriteHeader(http.StatusOK)
			})
			seed := func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if tt.sessionUserID != 0 {
						sm.Put(r.Context(), session.KeyUserID, tt.sessionUserID)
					}
					next.ServeHTTP(w, r)
				})
			}

			handler := sm.LoadAndSave(seed(LoadUser(sm, users)(final)))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if (gotUser != nil) != tt.wantUser {
				t.Errorf("user loaded = %v, want %v", gotUser != nil, tt.wantUser)
			}
			if (sessionID != 0) != tt.wantSession {
				t.Errorf("session kept = %v, want %v", sessionID != 0, tt.wantSession)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	activity := &stubActivity{}
	handler := RequireAdmin(activity)(http.HandlerFunc(okHandler))

	tests := []struct {
		name string
		user *model.User
		want int
	}{
		{"anonymous", nil, http.StatusSeeOther},
		{"user", &model.User{ID: 2, Role: model.RoleUser, IsApproved: true}, http.StatusForbidden},
		{"admin", &model.User{ID: 1, Role: model.RoleAdmin, IsApproved: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/approveUser/5", nil)
			if tt.user != nil {
				req = withUser(req, tt.user)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}

	if len(activity.messages) != 1 {
		t.Errorf("activity entries = %v, want one denial", activity.messages)
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	handler := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/3", nil))

	if got != "/events/3" {
		t.Errorf("GetRequestPath() = %q, want /events/3", got)
	}
	if GetRequestPath(context.Background()) != "" {
		t.Error("expected empty path for bare context")
	}
}

func TestClientIP(t *testing.T) {
	var got string
	handler := ClientIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = service.ClientIP(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4040"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.9" {
		t.Errorf("ClientIP = %q, want 203.0.113.9", got)
	}
}
