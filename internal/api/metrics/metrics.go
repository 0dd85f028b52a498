// Package metrics defines and registers all custom Prometheus metrics for the
// Billed application. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation; HTTP request metrics are added by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "billed"

// ── Bill list metrics ─────────────────────────────────────────────────────────

// BillsListedTotal counts list requests served by the bill store.
// Label:
//   - source: "cache" when served from Redis, "store" when read from MongoDB
var BillsListedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_listed_total",
		Help:      "Total number of bill list requests, by source.",
	},
	[]string{"source"},
)

// BillsFetchErrorsTotal counts list requests that could not be served.
// Label:
//   - reason: "not_found" or "server_error"
var BillsFetchErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_fetch_errors_total",
		Help:      "Total number of failed bill list requests.",
	},
	[]string{"reason"},
)

// MalformedDatesTotal counts bills rendered with a date that could not be parsed.
var MalformedDatesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "malformed_dates_total",
		Help:      "Total number of bills displayed with an unparseable date.",
	},
)

// ── Receipt & submission metrics ──────────────────────────────────────────────

// ReceiptsTotal counts receipt selections.
// Label:
//   - result: "accepted", "rejected" or "failed" (upload error)
var ReceiptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "receipts_total",
		Help:      "Total number of receipt selections, by validation result.",
	},
	[]string{"result"},
)

// BillsSubmittedTotal counts completed new bill submissions.
// Label:
//   - type: the expense category (e.g. "Transports")
var BillsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_submitted_total",
		Help:      "Total number of bills submitted, by expense type.",
	},
	[]string{"type"},
)

// BillDecisionsTotal counts admin review decisions.
// Label:
//   - status: "accepted" or "refused"
var BillDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bill_decisions_total",
		Help:      "Total number of admin decisions on bills, by resulting status.",
	},
	[]string{"status"},
)

// StoreOperationDuration measures bill store calls end-to-end.
// Label:
//   - operation: "list", "create" or "update"
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of bill store operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)
