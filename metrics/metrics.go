// Package metrics provides Prometheus metrics for the scriptorium
// connector: tool call counts and latencies, remote API activity,
// traversal progress, and per-traversal adapter cache performance.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "scriptorium"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// WikiAPIRequestsTotal counts remote wiki API requests
	WikiAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "wiki_api_requests_total",
		Help:      "Total wiki API requests by action and status",
	}, []string{"action", "status"})

	// WikiAPILatency measures wiki API call latency by action
	WikiAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "wiki_api_latency_seconds",
		Help:      "Wiki API call latency by action",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})

	// TraversalPagesFetched counts listing pages fetched per traversal kind
	TraversalPagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "traversal_pages_fetched_total",
		Help:      "Listing pages fetched by traversal kind",
	}, []string{"listing"})

	// TraversalRowsDropped counts rows discarded during traversal
	TraversalRowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "traversal_rows_dropped_total",
		Help:      "Listing rows discarded by traversal kind and reason",
	}, []string{"listing", "reason"})

	// AdapterCacheHits counts per-traversal metadata cache hits
	AdapterCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "adapter_cache_hits_total",
		Help:      "Per-traversal adapter metadata cache hits",
	})

	// AdapterCacheMisses counts per-traversal metadata cache misses
	AdapterCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "adapter_cache_misses_total",
		Help:      "Per-traversal adapter metadata cache misses",
	})

	// AuthFailures counts authentication failures
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_failures_total",
		Help:      "Authentication failure count by remote result code",
	}, []string{"code"})

	// EditConflicts counts detected edit conflicts
	EditConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "edit_conflicts_total",
		Help:      "Edits rejected by the remote's revision timestamp check",
	})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})
)

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	RequestsTotal.WithLabelValues(tool, status).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records a remote wiki API call
func RecordAPICall(action string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	WikiAPIRequestsTotal.WithLabelValues(action, status).Inc()
	WikiAPILatency.WithLabelValues(action).Observe(duration)
}

// RecordCacheAccess records a per-traversal adapter cache hit or miss
func RecordCacheAccess(hit bool) {
	if hit {
		AdapterCacheHits.Inc()
	} else {
		AdapterCacheMisses.Inc()
	}
}
