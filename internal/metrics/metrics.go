// Package metrics defines Prometheus metrics for docgraph.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docgraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgraph_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgraph_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	GraphOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgraph_graph_operations_total",
			Help: "Graph operations by operation and outcome",
		},
		[]string{"op", "status"},
	)

	CursorExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgraph_cursor_executions_total",
			Help: "Traversal executions by kind (iterate, drain, count)",
		},
		[]string{"kind"},
	)

	CursorHandlesOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_cursor_handles_open",
			Help: "Server-side cursor handles currently held open",
		},
	)

	CascadeEdgesRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docgraph_cascade_edges_removed_total",
			Help: "Edges removed while cascading vertex removals",
		},
	)

	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_audit_queue_depth",
			Help: "Current audit queue depth",
		},
	)

	AuditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docgraph_audit_dropped_total",
			Help: "Audit entries dropped because the queue was full",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		GraphOperations, CursorExecutions, CursorHandlesOpen,
		CascadeEdgesRemoved, AuditQueueDepth, AuditDropped,
	)
}
