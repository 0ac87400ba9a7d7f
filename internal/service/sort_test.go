// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"testing"
	"time"

	"github.com/olegiv/eventhub/internal/model"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "date", false},
		{"name", "name", false},
		{"date:desc, name", "date:desc,name", false},
		{"Organizer:ASC", "organizer", false},
		{"location:desc,description", "location:desc,description", false},
		{"price", "", true},
		{"name,name:desc", "", true},
		{"name:sideways", "", true},
	}

	for _, tt := range tests {
		keys, err := ParseSort(tt.in)
		if tt.wantErr {
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("ParseSort(%q) error = %v, want ValidationError", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSort(%q) error: %v", tt.in, err)
			continue
		}
		if got := FormatSort(keys); got != tt.want {
			t.Errorf("ParseSort(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortEvents(t *testing.T) {
	d1 := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	events := []model.Event{
		{ID: 1, Name: "zeta", Date: d1, OrganizerName: "bob"},
		{ID: 2, Name: "Alpha", Date: d2, OrganizerName: "Alice"},
		{ID: 3, Name: "alpha", Date: d1, OrganizerName: "carol"},
		{ID: 4, Name: "Beta", Date: d2, OrganizerName: "alice"},
	}

	ids := func() []int64 {
		out := make([]int64, len(events))
		for i, e := range events {
			out[i] = e.ID
		}
		return out
	}
	check := func(spec string, want []int64) {
		t.Helper()
		keys, err := ParseSort(spec)
		if err != nil {
			t.Fatalf("ParseSort(%q): %v", spec, err)
		}
		SortEvents(events, keys)
		got := ids()
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("sort %q = %v, want %v", spec, got, want)
				return
			}
		}
	}

	check("name", []int64{2, 3, 4, 1})
	check("date:desc,name", []int64{2, 4, 3, 1})
	check("organizer,name:desc", []int64{4, 2, 1, 3})
}
