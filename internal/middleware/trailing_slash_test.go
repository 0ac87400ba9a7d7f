// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripTrailingSlash(t *testing.T) {
	tests := []struct {
		target   string
		wantCode int
		wantLoc  string
	}{
		{"/", http.StatusOK, ""},
		{"/events", http.StatusOK, ""},
		{"/events/", http.StatusMovedPermanently, "/events"},
		{"/events//", http.StatusMovedPermanently, "/events"},
		{"/admin/events/?sort=name", http.StatusMovedPermanently, "/admin/events?sort=name"},
	}

	handler := StripTrailingSlash(http.HandlerFunc(okHandler))
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if rr.Code != tt.wantCode {
			t.Errorf("%s: status = %d, want %d", tt.target, rr.Code, tt.wantCode)
		}
		if got := rr.Header().Get("Location"); got != tt.wantLoc {
			t.Errorf("%s: Location = %q, want %q", tt.target, got, tt.wantLoc)
		}
	}
}
