// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

// Package middleware provides chi middleware for the ops HTTP server:
// request id propagation, debug access logging and Prometheus request
// metrics labeled by route pattern.
package middleware
