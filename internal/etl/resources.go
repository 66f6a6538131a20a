// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinesync/internal/config"
	"github.com/tomtom215/cinesync/internal/postgres"
	"github.com/tomtom215/cinesync/internal/retry"
	"github.com/tomtom215/cinesync/internal/search"
)

// Resources are the connections a round works with.
type Resources struct {
	Extractor Extractor
	Loader    Loader

	closers []func()
}

// NewResources bundles ex and loader; closers run in reverse order on Close.
func NewResources(ex Extractor, loader Loader, closers ...func()) *Resources {
	return &Resources{Extractor: ex, Loader: loader, closers: closers}
}

// Close releases every connection.
func (r *Resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// Opener opens the connections for one round.
type Opener func(ctx context.Context) (*Resources, error)

// NewOpener returns an Opener that connects to the catalog database and the
// search cluster described by cfg. Both connections go through the retry
// policy built from cfg.Backoff. Every round's search client shares one
// circuit breaker.
func NewOpener(cfg *config.Config) Opener {
	policy := retry.NewPolicy(cfg.Backoff)
	breaker := search.NewCircuitBreaker()

	return func(ctx context.Context) (*Resources, error) {
		pool, err := postgres.Connect(ctx, cfg.Postgres, policy)
		if err != nil {
			return nil, err
		}

		es, err := search.Connect(ctx, cfg.Elasticsearch, search.Options{
			FailOnPartialBulk: cfg.ETL.FailOnPartialBulk,
			Retry:             policy,
			Breaker:           breaker,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("open search client: %w", err)
		}

		ex := postgres.NewExtractor(pool, postgres.Options{
			Schema:   cfg.Postgres.Schema,
			PageSize: cfg.ETL.PageSize,
			Retry:    policy,
		})
		return NewResources(ex, es, pool.Close, es.Close), nil
	}
}
