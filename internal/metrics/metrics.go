// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics defines the Prometheus collectors exported by eventhub.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventhub"

// Registry holds every eventhub collector.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// AuthAttempts counts login attempts by outcome
// (success, not_found, bad_credential, not_approved, locked).
var AuthAttempts = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Login attempts by outcome",
	},
	[]string{"outcome"},
)

// Registrations counts registration attempts by outcome
// (success, mismatch, duplicate_email, invalid).
var Registrations = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Registration attempts by outcome",
	},
	[]string{"outcome"},
)

// WorkflowTransitions counts admin workflow actions
// (approve_user, reject_user, confirm_event, deny_event, finalized_rejected).
var WorkflowTransitions = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflow_transitions_total",
		Help:      "Approval workflow transitions by action",
	},
	[]string{"action"},
)

// EventMutations counts event registry writes by operation (create, update, delete, conflict).
var EventMutations = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_mutations_total",
		Help:      "Event registry writes by operation",
	},
	[]string{"op"},
)

// LoginLockouts counts accounts locked after repeated failed sign-ins.
var LoginLockouts = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_lockouts_total",
		Help:      "Accounts locked after repeated failed sign-ins",
	},
)

// PendingUsers is the number of accounts awaiting approval.
var PendingUsers = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_users",
		Help:      "Accounts awaiting administrator approval",
	},
)

// PendingEvents is the number of events awaiting confirmation.
var PendingEvents = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_events",
		Help:      "Events awaiting administrator confirmation",
	},
)

// HTTPRequests counts served requests by method and status code.
var HTTPRequests = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status",
	},
	[]string{"method", "status"},
)

// HTTPDuration observes request latency by method.
var HTTPDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
