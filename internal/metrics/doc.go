// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package metrics provides Prometheus metrics for the sync engine.

All collectors are registered with the default registry through promauto and
are exposed by the ops server at /metrics:

	curl http://localhost:9108/metrics

# Available Metrics

Cycle Metrics:
  - etl_cycle_duration_seconds: Cycle latency (histogram), labels: doc_type
  - etl_cycles_total: Cycles by outcome (counter), labels: doc_type, outcome
  - etl_cycle_last_success_timestamp: Last committed cycle (gauge), labels: doc_type
  - etl_rounds_total: Scheduler rounds started (counter)

Extraction and Load Metrics:
  - etl_rows_extracted_total: Source rows read (counter), labels: doc_type
  - etl_query_duration_seconds / etl_query_errors_total: labels: query
  - etl_documents_loaded_total: Documents indexed (counter), labels: index
  - etl_bulk_item_failures_total: Rejected bulk items (counter), labels: index
  - etl_bulk_request_duration_seconds: Bulk latency (histogram), labels: index
  - etl_chunk_size: Documents per chunk (histogram), labels: doc_type

State Metrics:
  - etl_watermark_timestamp: Committed watermark (gauge), labels: doc_type, field

Retry and Circuit Breaker Metrics:
  - etl_retry_attempts_total / etl_retry_exhausted_total: labels: operation
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open, labels: name
  - circuit_breaker_requests_total: labels: name, result
  - circuit_breaker_consecutive_failures: labels: name
  - circuit_breaker_state_transitions_total: labels: name, from_state, to_state

# Example Queries

Failed cycles over the last hour:

	sum by (doc_type) (increase(etl_cycles_total{outcome="failed"}[1h]))

Watermark lag for film works:

	time() - etl_watermark_timestamp{doc_type="Filmwork",field="filmwork_updated_at"}
*/
package metrics
