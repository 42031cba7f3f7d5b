// Package metrics defines and registers all custom Prometheus metrics for the
// tracking viewer. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors are registered with the default registry on package load via
// promauto; the HTTP server exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracking"

// ── Polling metrics ───────────────────────────────────────────────────────────

// PollCyclesTotal counts poll cycles started (immediate and timer driven).
var PollCyclesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_cycles_total",
		Help:      "Total number of poll cycles started.",
	},
)

// FetchOutcomesTotal counts endpoint outcomes.
// Labels:
//   - resource: "position", "simulated" or "optimized"
//   - outcome: "success", "not_found", "transport_error", "schema_error", "invalid_location"
var FetchOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_outcomes_total",
		Help:      "Total number of endpoint retrievals, by resource and outcome.",
	},
	[]string{"resource", "outcome"},
)

// FetchDuration measures a single retrieval including normalization.
// Label:
//   - resource: "position", "simulated" or "optimized"
var FetchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of one endpoint retrieval and normalization.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource"},
)

// StaleResultsTotal counts results discarded because their session generation
// was retired (stop or subject switch) before they resolved.
var StaleResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_results_discarded_total",
		Help:      "Total number of fetch results dropped because their session was retired.",
	},
	[]string{"resource"},
)

// SkippedFetchesTotal counts fetches not issued because the previous fetch of
// the same resource was still pending.
// Label:
//   - resource: "position", "simulated" or "optimized"
var SkippedFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skipped_fetches_total",
		Help:      "Total number of fetches skipped while the same resource was still in flight.",
	},
	[]string{"resource"},
)

// ActiveSessions is 1 while a subject is being polled.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of polling sessions currently running.",
	},
)

// ── Presentation metrics ──────────────────────────────────────────────────────

// MarkerRepositionsTotal counts in-place marker moves.
var MarkerRepositionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "marker_repositions_total",
		Help:      "Total number of in-place marker repositions.",
	},
)

// FeedDroppedTotal counts marker updates dropped because a feed worker was full.
var FeedDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_dropped_total",
		Help:      "Total number of marker updates dropped by the live feed dispatcher.",
	},
)

// FeedQueueDepth tracks pending marker updates per feed worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var FeedQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_queue_depth",
		Help:      "Current number of marker updates pending in each feed worker channel.",
	},
	[]string{"worker_id"},
)
