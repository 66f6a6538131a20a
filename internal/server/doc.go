// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package server provides the ops HTTP surface of CineSync.

Routes:

	GET /healthz   process liveness, always 200 while the process serves
	GET /readyz    200 once the last round reached both stores with no
	               failed cycle, 503 otherwise (body is the round status)
	GET /metrics   Prometheus exposition
	GET /state     current watermark of every document type (read-only)

The server never mutates sync state. Resetting watermarks is done with the
"cinesync state reset" command while the sync loop is stopped.
*/
package server
