// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package services provides suture.Service wrappers for CineSync components.

  - SyncService adapts the etl.Scheduler Start/Stop lifecycle.
  - HTTPServerService adapts *http.Server ListenAndServe/Shutdown for the ops
    endpoints.

Each wrapper returns ctx.Err() after a requested shutdown and a wrapped error
when the underlying component fails, which is what suture uses to decide on a
restart.
*/
package services
