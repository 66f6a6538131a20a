// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package search loads documents into Elasticsearch with go-elasticsearch.

# Index Resolution

Each document type has one target index (config elasticsearch.*_index):

	Filmwork -> movies
	Person   -> persons
	Genre    -> genres

EnsureIndices creates missing indices at startup. The body comes from
<index_schema_dir>/<index><index_schema_suffix> when a schema directory is
configured, otherwise from the schemas compiled into the binary. An index
that already exists, or that another process creates concurrently, is left
untouched.

# Bulk Loading

UpsertBatch sends one _bulk request per chunk with an index action per
document, keyed by the document uuid, so reloading a row replaces the
previous version. Items rejected inside an otherwise successful request are
reported in BulkResult. Whether that fails the cycle is controlled by
etl.fail_on_partial_bulk.

# Resilience

Every request goes through, from the outside in:

  - retry.Policy: transport errors and 429/502/503/504 are retried with backoff
  - a gobreaker circuit breaker ("elasticsearch") that opens after a
    sustained failure rate; client errors (4xx other than 429) do not count
  - a token bucket limiting bulk requests per second (0 disables it)
  - the per-request timeout elasticsearch.request_timeout
*/
package search
