// Package metrics defines and registers the custom Prometheus metrics of the
// storefront gateway. It is the single source of truth for metric names,
// labels and help strings.
//
// Metrics are registered with the default registry through promauto, so
// they are exposed by the /metrics endpoint as soon as the package is linked.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Backend metrics ───────────────────────────────────────────────────────────

// RemoteRequestsTotal counts calls to the storefront backend.
// Labels:
//   - op: logical operation (e.g. "list cart", "submit order")
//   - code: HTTP status code, or "error" when the backend was unreachable
var RemoteRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_requests_total",
		Help:      "Total number of backend calls, by operation and status code.",
	},
	[]string{"op", "code"},
)

// RemoteRequestDuration measures backend round trips.
var RemoteRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Duration of backend calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// ── Cart and order metrics ────────────────────────────────────────────────────

// CartMutationsTotal counts cart mutations.
// Labels:
//   - action: "add", "update" or "remove"
//   - result: "ok" or "error"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations, by action and result.",
	},
	[]string{"action", "result"},
)

// OrdersSubmittedTotal counts order submissions.
// Labels:
//   - kind: "cart" or "excel"
//   - result: "ok" or "error"
var OrdersSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_submitted_total",
		Help:      "Total number of order submissions, by kind and result.",
	},
	[]string{"kind", "result"},
)

// SessionEventsTotal counts session lifecycle events ("login", "login_failed", "logout").
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session lifecycle events.",
	},
	[]string{"event"},
)

// SerializerQueueDepth tracks pending cart mutations per serializer worker.
var SerializerQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "serializer_queue_depth",
		Help:      "Current number of cart mutations pending in each serializer worker.",
	},
	[]string{"worker_id"},
)

// ObserveRemote records one backend call. status 0 means a transport failure.
func ObserveRemote(op string, status int, elapsed time.Duration) {
	code := "error"
	if status != 0 {
		code = strconv.Itoa(status)
	}
	RemoteRequestsTotal.WithLabelValues(op, code).Inc()
	RemoteRequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveQueueDepth records the queue depth of one serializer worker.
func ObserveQueueDepth(worker, depth int) {
	SerializerQueueDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(depth))
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
