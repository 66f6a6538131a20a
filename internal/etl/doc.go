// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package etl runs the extract, transform and load cycles that keep the search
indices in step with the catalog database.

A cycle belongs to one document type and is driven by an Orchestrator built
with NewFilmworkSync, NewPersonSync or NewGenreSync. The orchestrator binds a
ChangeResolver, which turns the stored watermark into the set of ids to
reload, and a DocumentTransformer, which turns source rows into search
documents:

	Idle -> Extracting -> NoChanges
	                   -> Chunking -> Transforming -> Loading -> Committing -> Idle

Any failure while extracting, transforming or loading ends the cycle in
Failed with an *ETLError, and the stored watermark keeps its previous value.
The next cycle therefore reprocesses the whole window.

# Modes

Until a cycle has completed once for a type (flag_success is false) the
resolver runs in bulk mode: every row is loaded and the watermark is seeded
from the most recently updated row of each tracked table. Afterwards it runs
in incremental mode and only rows updated after the watermark are loaded.
Film works are also reloaded when a genre or person they reference changes.

# Scheduling

The Scheduler runs rounds of Filmwork, Genre and Person cycles one after the
other. Database and Elasticsearch connections are opened at the start of a
round and closed at its end. A failed cycle is logged and does not stop the
other types of the same round or the rounds that follow.
*/
package etl
