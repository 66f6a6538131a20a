// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

//go:build integration

// Package testinfra starts Postgres, Elasticsearch and Redis containers for
// integration tests.
//
// All files carry the integration build tag, so the package only compiles
// with:
//
//	go test -tags integration ./...
//
// # Usage
//
//	func TestExtractor(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//
//	    pg, err := testinfra.NewPostgresContainer(ctx,
//	        testinfra.WithInitScripts("testdata/schema.sql"),
//	    )
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//
//	    pool, err := pgxpool.New(ctx, pg.DSN)
//	    // ...
//	}
//
// Tests are skipped when no Docker daemon is reachable.
package testinfra
