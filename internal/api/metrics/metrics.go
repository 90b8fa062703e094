// Package metrics defines and registers all custom Prometheus metrics for the
// auth service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at package init; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "codeplatform_auth"

// SignupsTotal counts signup attempts.
// Labels:
//   - role: "student" or "lecturer" ("unknown" when the request carried an invalid role)
//   - result: "ok", "rejected", or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// SigninsTotal counts signin attempts.
// Labels:
//   - role: "student" or "lecturer" ("unknown" when the request carried an invalid role)
//   - result: "ok", "rejected", or "error"
var SigninsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signins_total",
		Help:      "Total number of signin attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// TokenVerificationsTotal counts bearer-token checks in the auth middleware.
// Label:
//   - result: "ok" or "invalid"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// AuditEventsRecordedTotal counts audit events that reached the audit store.
// Label:
//   - action: "signup" or "signin"
var AuditEventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_recorded_total",
		Help:      "Total number of audit events persisted, by action.",
	},
	[]string{"action"},
)
