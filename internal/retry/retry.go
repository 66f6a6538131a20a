// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tomtom215/cinesync/internal/config"
	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/metrics"
)

// ErrExhausted wraps the last error once every attempt has failed.
var ErrExhausted = errors.New("max retry attempts reached")

// Policy describes how an operation is retried: exponential delays doubling
// from StartDelay and capped at BorderDelay, without jitter.
type Policy struct {
	StartDelay  time.Duration
	BorderDelay time.Duration
	MaxAttempts int

	// Retryable decides whether err is worth another attempt.
	// Nil means IsRetryable.
	Retryable func(err error) bool

	// timer is replaced in tests. Nil uses a real time.Timer.
	timer backoff.Timer
}

// NewPolicy builds a Policy from the backoff configuration.
func NewPolicy(cfg config.BackoffConfig) Policy {
	return Policy{
		StartDelay:  cfg.StartDelay,
		BorderDelay: cfg.BorderDelay,
		MaxAttempts: cfg.MaxAttempts,
	}
}

// newBackOff returns a reset exponential backoff for the policy.
func (p Policy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(p.StartDelay, p.BorderDelay)
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.BorderDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Delay returns the wait after the given zero-based failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	b := p.newBackOff()
	d := b.NextBackOff()
	for i := 0; i < attempt && d < p.BorderDelay; i++ {
		d = b.NextBackOff()
	}
	return d
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// run out, or ctx is done.
func (p Policy) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(p.MaxAttempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var (
		calls     int
		lastErr   error
		permanent bool
	)
	op := func() (T, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, backoff.Permanent(ctxErr)
		}
		calls++
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		var perm *backoff.PermanentError
		if errors.As(err, &perm) || !retryable(err) {
			permanent = true
			return zero, backoff.Permanent(err)
		}
		return zero, err
	}
	notify := func(err error, delay time.Duration) {
		metrics.RetryAttempts.WithLabelValues(operation).Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("operation", operation).
			Int("attempt", calls).
			Int("max_attempts", attempts).
			Dur("delay", delay).
			Msg("Retry attempt")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), uint64(attempts-1)), ctx)
	v, err := backoff.RetryNotifyWithTimerAndData(op, b, notify, p.timer)
	switch {
	case err == nil:
		if calls > 1 {
			logging.Ctx(ctx).Info().Str("operation", operation).Int("attempt", calls).
				Msg("Operation succeeded after retry")
		}
		return v, nil
	case permanent:
		return zero, err
	case ctx.Err() != nil:
		if lastErr != nil {
			return zero, fmt.Errorf("%s: %w (last error: %v)", operation, ctx.Err(), lastErr)
		}
		return zero, ctx.Err()
	}

	metrics.RetryExhausted.WithLabelValues(operation).Inc()
	logging.Ctx(ctx).Error().Err(err).Str("operation", operation).Int("attempts", calls).
		Msg("Giving up after retries")
	return zero, fmt.Errorf("%s: %w: %w", operation, ErrExhausted, err)
}
