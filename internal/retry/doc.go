// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package retry runs operations against Postgres and Elasticsearch with capped
exponential backoff.

The wait before retry n (zero-based) is

	min(border_delay, start_delay * 2^n)

and at most max_attempts calls are made. The schedule is a cenkalti/backoff
ExponentialBackOff with jitter disabled and no elapsed-time limit, wrapped in
WithMaxRetries and WithContext. Only errors accepted by the policy's
classifier are retried; IsRetryable is the default classifier and covers
connection failures, serialization/deadlock/lock-timeout SQLSTATEs and
Elasticsearch 429/502/503/504 responses. Anything else is returned at once.

Waits are cancellable: when the context ends during a backoff the context
error is returned and fn is not called again.

	p := retry.NewPolicy(cfg.Backoff)
	pool, err := retry.DoValue(ctx, p, "postgres_connect", func(ctx context.Context) (*pgxpool.Pool, error) {
	    return pgxpool.New(ctx, dsn)
	})
*/
package retry
