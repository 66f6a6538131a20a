// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

// Package logging provides centralized zerolog-based structured logging for CineSync.
//
// Every component of the sync engine logs through this package so that a single
// process emits one consistent stream: JSON for production collectors, a
// console writer for local runs.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once from config.LoggingConfig
//   - Round-scoped logging: every sync round carries a round ID in its context
//     and logging.Ctx(ctx) stamps it (and the document type, when set) on each line
//   - An slog adapter so suture's event hook (sutureslog) writes through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	ctx = logging.ContextWithNewRoundID(ctx)
//	ctx = logging.ContextWithDocType(ctx, "Filmwork")
//	logging.Ctx(ctx).Info().Int("documents", n).Msg("Chunk loaded")
//
// # Field Conventions
//
//   - round_id: identifies one Filmwork/Genre/Person pass of the scheduler
//   - doc_type: Filmwork, Person or Genre
//   - index: Elasticsearch index name
//   - component: emitting subsystem (postgres, search, state, scheduler)
//
// Always terminate chains with .Msg() or .Send(); an unterminated event is dropped.
package logging
