// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/olegiv/eventhub/internal/metrics"
)

func TestMetrics(t *testing.T) {
	notFound := metrics.HTTPRequests.WithLabelValues(http.MethodDelete, "404")
	implicit := metrics.HTTPRequests.WithLabelValues(http.MethodDelete, "200")
	beforeNotFound := testutil.ToFloat64(notFound)
	beforeImplicit := testutil.ToFloat64(implicit)

	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/missing", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/events/1", nil))

	if got := testutil.ToFloat64(notFound) - beforeNotFound; got != 1 {
		t.Errorf("404 counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(implicit) - beforeImplicit; got != 1 {
		t.Errorf("200 counter delta = %v, want 1", got)
	}
}
