// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeoutNormalRequest(t *testing.T) {
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom-Header", "test-value")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("Status = %d, want 201", rr.Code)
	}
	if rr.Header().Get("X-Custom-Header") != "test-value" {
		t.Error("custom header lost")
	}
	if rr.Body.String() != "created" {
		t.Errorf("Body = %q", rr.Body.String())
	}
}

func TestTimeoutSlowRequest(t *testing.T) {
	handler := Timeout(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", rr.Code)
	}
	if body := rr.Body.String(); body != "Request timeout" {
		t.Errorf("Body = %q, want %q", body, "Request timeout")
	}
}

func TestTimeoutWriter(t *testing.T) {
	rr := httptest.NewRecorder()
	tw := &timeoutWriter{ResponseWriter: rr}

	_, _ = tw.Write([]byte("a"))
	tw.WriteHeader(http.StatusTeapot)
	if rr.Code != http.StatusOK {
		t.Errorf("implicit status = %d, want 200", rr.Code)
	}

	tw.timedOut = true
	if _, err := tw.Write([]byte("b")); !errors.Is(err, http.ErrHandlerTimeout) {
		t.Errorf("write after timeout error = %v", err)
	}
	if rr.Body.String() != "a" {
		t.Errorf("Body = %q, want %q", rr.Body.String(), "a")
	}
}
