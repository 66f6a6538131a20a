// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package state persists per-document-type watermarks between sync cycles.

A Store wraps a Storage backend that reads and writes the whole state mapping
at once. Every value in the mapping is itself a JSON document, so the file
backend holds double-encoded JSON:

	{"Filmwork": "{\"filmwork_updated_at\":\"2024-03-01T12:00:00Z\",...}"}

Backends:
  - FileStorage: a JSON file rewritten atomically (temp file, fsync, rename)
  - RedisStorage: a Redis hash, one field per document type
  - BadgerStorage: an embedded BadgerDB, one key per document type

A missing, empty or corrupt state is read as an empty mapping, which puts every
document type back into bulk mode. Bulk reloads are idempotent because
documents are upserted by id, so losing state costs time but never data.

The engine runs a single writer; Store serializes its own read-modify-write
cycles but does not coordinate between processes.
*/
package state
