// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveWithHeaders(cfg SecurityHeadersConfig, path string) http.Header {
	handler := SecurityHeaders(cfg)(http.HandlerFunc(okHandler))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

func TestSecurityHeaders(t *testing.T) {
	prod := serveWithHeaders(DefaultSecurityHeadersConfig(false), "/events")

	if got := prod.Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
	if got := prod.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := prod.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	csp := prod.Get("Content-Security-Policy")
	if !strings.HasPrefix(csp, "default-src 'self'; script-src 'self'") {
		t.Errorf("CSP = %q", csp)
	}
	if !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("CSP missing frame-ancestors: %q", csp)
	}
	for _, h := range []string{"Referrer-Policy", "Permissions-Policy"} {
		if prod.Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}

	dev := serveWithHeaders(DefaultSecurityHeadersConfig(true), "/events")
	if got := dev.Get("Strict-Transport-Security"); got != "" {
		t.Errorf("development HSTS = %q, want none", got)
	}
}

func TestSecurityHeadersExcludePaths(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePaths = []string{"/metrics"}

	if h := serveWithHeaders(cfg, "/metrics"); h.Get("Content-Security-Policy") != "" {
		t.Error("excluded path should not get security headers")
	}
	if h := serveWithHeaders(cfg, "/events"); h.Get("Content-Security-Policy") == "" {
		t.Error("other paths should get security headers")
	}
}

func TestBuildCSP(t *testing.T) {
	csp := buildCSP(map[string]string{
		"upgrade-insecure-requests": "",
		"img-src":                   "'self' data:",
		"default-src":               "'self'",
		"manifest-src":              "'self'",
	})

	want := "default-src 'self'; img-src 'self' data:; manifest-src 'self'; upgrade-insecure-requests "
	if csp != want {
		t.Errorf("buildCSP() = %q, want %q", csp, want)
	}
}

func TestBuildPermissionsPolicy(t *testing.T) {
	got := buildPermissionsPolicy(map[string]string{"usb": "()", "camera": "()"})
	if got != "camera=(), usb=()" {
		t.Errorf("buildPermissionsPolicy() = %q", got)
	}
}
