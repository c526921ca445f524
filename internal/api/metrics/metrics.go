// Package metrics defines the custom Prometheus metrics for the task API.
// It is the single source of truth for metric names, labels, and help
// strings; everything registers with the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskapi"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts successfully created accounts.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts successfully registered.",
	},
)

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts bearer tokens that failed verification on an
// incoming request. Rejection reasons are never distinguished, so there is
// no reason label.
var TokenRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of bearer tokens rejected during request authentication.",
	},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TaskOpsTotal counts completed task operations.
// Label:
//   - op: "create", "update", or "delete"
var TaskOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_ops_total",
		Help:      "Total number of completed task mutations, by operation.",
	},
	[]string{"op"},
)

// ── Audit pipeline metrics ────────────────────────────────────────────────────

// AuditEventsTotal counts audit events persisted successfully.
// Label:
//   - action: the audit action (e.g. "task_created")
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events persisted, by action.",
	},
	[]string{"action"},
)

// AuditFailuresTotal counts audit events that could not be persisted.
var AuditFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_failures_total",
		Help:      "Total number of audit events dropped after a persistence failure.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index ("0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each worker channel.",
	},
	[]string{"worker_id"},
)
