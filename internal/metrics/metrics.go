// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle outcomes used as the "outcome" label of CyclesTotal.
const (
	OutcomeSuccess   = "success"
	OutcomeNoChanges = "no_changes"
	OutcomeFailed    = "failed"
)

var (
	// Sync Cycle Metrics
	CycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_cycle_duration_seconds",
			Help:    "Duration of one sync cycle for a document type in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900}, // bulk loads can take minutes
		},
		[]string{"doc_type"},
	)

	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_cycles_total",
			Help: "Total number of sync cycles by outcome",
		},
		[]string{"doc_type", "outcome"}, // outcome: "success", "no_changes", "failed"
	)

	CycleLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "etl_cycle_last_success_timestamp",
			Help: "Unix timestamp of the last committed cycle",
		},
		[]string{"doc_type"},
	)

	RoundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_rounds_total",
			Help: "Total number of scheduler rounds started",
		},
	)

	// Extraction / Load Metrics
	RowsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_extracted_total",
			Help: "Total number of source rows read from Postgres",
		},
		[]string{"doc_type"},
	)

	DocumentsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_documents_loaded_total",
			Help: "Total number of documents accepted by Elasticsearch",
		},
		[]string{"index"},
	)

	BulkItemFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_bulk_item_failures_total",
			Help: "Total number of documents rejected inside a bulk request",
		},
		[]string{"index"},
	)

	BulkRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_bulk_request_duration_seconds",
			Help:    "Duration of Elasticsearch bulk requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"index"},
	)

	ChunkSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_chunk_size",
			Help:    "Number of documents per loaded chunk",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"doc_type"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_query_duration_seconds",
			Help:    "Duration of Postgres extraction queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_query_errors_total",
			Help: "Total number of failed Postgres extraction queries",
		},
		[]string{"query"},
	)

	// State Metrics
	WatermarkTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "etl_watermark_timestamp",
			Help: "Committed watermark as a Unix timestamp",
		},
		[]string{"doc_type", "field"},
	)

	// Retry Metrics
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_retry_attempts_total",
			Help: "Total number of retried operations after a transient failure",
		},
		[]string{"operation"},
	)

	RetryExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_retry_exhausted_total",
			Help: "Total number of operations that failed after all retry attempts",
		},
		[]string{"operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Ops Server Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ops_http_requests_total",
			Help: "Total number of requests to the ops HTTP server",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ops_http_request_duration_seconds",
			Help:    "Latency of ops HTTP requests",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"route"},
	)
)

// RecordHTTPRequest records one ops HTTP request. route is the matched
// router pattern, not the raw path.
func RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordCycle records the outcome of one sync cycle.
func RecordCycle(docType, outcome string, duration time.Duration) {
	CycleDuration.WithLabelValues(docType).Observe(duration.Seconds())
	CyclesTotal.WithLabelValues(docType, outcome).Inc()
	if outcome == OutcomeSuccess {
		CycleLastSuccess.WithLabelValues(docType).Set(float64(time.Now().Unix()))
	}
}

// RecordQuery records an extraction query metric
func RecordQuery(query string, duration time.Duration, err error) {
	QueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		QueryErrors.WithLabelValues(query).Inc()
	}
}

// RecordBulk records the result of one bulk request.
func RecordBulk(index string, loaded, failed int, duration time.Duration) {
	BulkRequestDuration.WithLabelValues(index).Observe(duration.Seconds())
	if loaded > 0 {
		DocumentsLoaded.WithLabelValues(index).Add(float64(loaded))
	}
	if failed > 0 {
		BulkItemFailures.WithLabelValues(index).Add(float64(failed))
	}
}
