// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package postgres reads the movie catalog from Postgres with pgx.

The Extractor runs two kinds of queries against the content schema:

  - change detection: (id, updated_at) pairs of rows changed after a
    watermark, the most recently updated row, every row of a table, and the
    film works reachable from a set of genres or persons;
  - document extraction: one aggregate row per film work, person or genre,
    selected by primary key.

Every query is parameterized and ordered by updated_at, then id.

Document extraction runs inside a read-only transaction through a
server-side cursor. Rows are fetched page_size at a time and handed to a
callback, so a bulk load of the whole catalog never holds more than one page
in memory:

	err := ex.StreamFilmworks(ctx, ids, func(page []models.FilmworkRow) error {
	    // transform and load
	    return nil
	})

Opening the pool, beginning the transaction and declaring the cursor go
through retry.Policy, so a database restart during a round is absorbed by the
backoff instead of failing the cycle.
*/
package postgres
