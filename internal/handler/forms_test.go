// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/eventhub/internal/model"
)

func formRequest(t *testing.T, values url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events/create", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := req.ParseForm(); err != nil {
		t.Fatalf("ParseForm: %v", err)
	}
	return req
}

func TestParseEventForm(t *testing.T) {
	req := formRequest(t, url.Values{
		"name":        {"Meetup"},
		"description": {"Talks"},
		"date":        {"2026-11-05"},
		"location":    {"Hall"},
		"version":     {"4"},
		"organizerId": {"1"},
	})

	in, form := parseEventForm(req)
	if len(form.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", form.Errors)
	}
	if in.Name != "Meetup" || in.Location != "Hall" || in.Description != "Talks" {
		t.Errorf("input = %+v", in)
	}
	if want := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC); !in.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", in.Date, want)
	}
	if form.Version != 4 {
		t.Errorf("Version = %d, want 4", form.Version)
	}
}

func TestParseEventForm_Dates(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{"2026-11-05", false},
		{"2026-11-05T18:30", false},
		{"2026-11-05T18:30:15", false},
		{"", false},
		{"05/11/2026", true},
		{"2026-13-01", true},
	}

	for _, tt := range tests {
		_, form := parseEventForm(formRequest(t, url.Values{"name": {"x"}, "date": {tt.date}}))
		_, hasErr := form.Errors["date"]
		if hasErr != tt.wantErr {
			t.Errorf("date %q: error = %v, want %v", tt.date, hasErr, tt.wantErr)
		}
	}
}

func TestEventFormAction(t *testing.T) {
	if got := (eventForm{}).Action(); got != "/events/create" {
		t.Errorf("create Action() = %q", got)
	}

	form := eventFormFrom(&model.Event{ID: 7, Name: "x", Version: 3, Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})
	if got := form.Action(); got != "/events/7/edit" {
		t.Errorf("edit Action() = %q", got)
	}
	if form.Date != "2026-01-02" || form.Version != 3 {
		t.Errorf("form = %+v", form)
	}
}
