// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(AuthAttempts.WithLabelValues("success"))
	AuthAttempts.WithLabelValues("success").Inc()
	if got := testutil.ToFloat64(AuthAttempts.WithLabelValues("success")); got != before+1 {
		t.Errorf("auth success = %v, want %v", got, before+1)
	}

	PendingUsers.Set(3)
	if got := testutil.ToFloat64(PendingUsers); got != 3 {
		t.Errorf("pending users = %v, want 3", got)
	}
}

func TestHandler(t *testing.T) {
	WorkflowTransitions.WithLabelValues("approve_user").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `eventhub_workflow_transitions_total{action="approve_user"}`) {
		t.Error("exposition should include workflow transitions")
	}
}
