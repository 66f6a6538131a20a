// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package models defines the data structures shared by the sync engine.

Model Categories:

 1. Document types and watermarks:
    - DocType: Filmwork, Person or Genre; one sync cycle per type
    - Watermark: persisted high-water marks for one DocType
    - IDStamp: (id, updated_at) pair returned by change-detection queries

 2. Source rows (as scanned from Postgres, nullable columns as pointers):
    - FilmworkRow, PersonRow, GenreRow

 3. Search documents (as indexed in Elasticsearch):
    - FilmworkDocument, PersonDocument, GenreDocument
    - Ref: {uuid, name} pair embedded in film work documents

Watermarks serialize only the fields their DocType tracks, plus es_updated_at
and flag_success. Timestamps are written as RFC 3339; the reader also accepts
the "2006-01-02 15:04:05.999999+00:00" form and the legacy flag_ETL_success key.
*/
package models
