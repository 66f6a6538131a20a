// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/cinesync/internal/config"
)

var errTransient = &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}

// recordingTimer collects requested delays and fires at once.
type recordingTimer struct {
	delays  []time.Duration
	onStart func()
	c       chan time.Time
}

func (r *recordingTimer) Start(d time.Duration) {
	r.delays = append(r.delays, d)
	r.c = make(chan time.Time, 1)
	if r.onStart != nil {
		r.onStart()
		return
	}
	r.c <- time.Now()
}

func (r *recordingTimer) Stop() {}

func (r *recordingTimer) C() <-chan time.Time { return r.c }

func testPolicy(attempts int) (Policy, *recordingTimer) {
	rs := &recordingTimer{}
	p := NewPolicy(config.BackoffConfig{
		StartDelay:  100 * time.Millisecond,
		BorderDelay: time.Second,
		MaxAttempts: attempts,
	})
	p.timer = rs
	return p, rs
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{StartDelay: 100 * time.Millisecond, BorderDelay: 10 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{6, 6400 * time.Millisecond},
		{7, 10 * time.Second},
		{50, 10 * time.Second},
		{1000, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.want, p.Delay(tt.attempt))
		})
	}
}

func TestPolicy_Delay_StartAboveBorder(t *testing.T) {
	p := Policy{StartDelay: 20 * time.Second, BorderDelay: 10 * time.Second}
	assert.Equal(t, 10*time.Second, p.Delay(0))
}

func TestDo_DelayScheduleMatchesPolicy(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Duration
		border   time.Duration
		attempts int
	}{
		{"doubling then capped", 100 * time.Millisecond, 10 * time.Second, 12},
		{"cap reached early", 300 * time.Millisecond, time.Second, 6},
		{"start above border", 5 * time.Second, time.Second, 4},
		{"single attempt", 100 * time.Millisecond, time.Second, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &recordingTimer{}
			p := Policy{StartDelay: tt.start, BorderDelay: tt.border, MaxAttempts: tt.attempts, timer: rs}
			calls := 0

			err := p.Do(context.Background(), "test_op", func(context.Context) error {
				calls++
				return errTransient
			})

			require.ErrorIs(t, err, ErrExhausted)
			assert.Equal(t, tt.attempts, calls)
			require.Len(t, rs.delays, tt.attempts-1)
			for i, d := range rs.delays {
				assert.Equal(t, p.Delay(i), d, "delay after attempt %d", i)
			}
		})
	}
}

func TestDo_PermanentStopsWithCustomClassifier(t *testing.T) {
	p, rs := testPolicy(5)
	p.Retryable = func(error) bool { return true }
	calls := 0

	err := p.Do(context.Background(), "test_op", func(context.Context) error {
		calls++
		return Permanent(errTransient)
	})

	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rs.delays)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	p, rs := testPolicy(5)
	calls := 0

	err := p.Do(context.Background(), "test_op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rs.delays)
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	p, rs := testPolicy(5)
	boom := errors.New("syntax error at or near SELEC")
	calls := 0

	err := p.Do(context.Background(), "test_op", func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rs.delays)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	p, rs := testPolicy(4)
	calls := 0

	err := p.Do(context.Background(), "test_op", func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	assert.Equal(t, 4, calls)
	assert.Len(t, rs.delays, 3, "no wait after the last attempt")
}

func TestDo_ContextCanceledDuringWait(t *testing.T) {
	p, rs := testPolicy(10)
	ctx, cancel := context.WithCancel(context.Background())
	rs.onStart = cancel
	calls := 0

	err := p.Do(ctx, "test_op", func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_RealWaitIsCancellable(t *testing.T) {
	p := Policy{StartDelay: time.Hour, BorderDelay: time.Hour, MaxAttempts: 2}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Do(ctx, "test_op", func(context.Context) error { return errTransient })

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDo_CustomClassifier(t *testing.T) {
	p, _ := testPolicy(3)
	p.Retryable = func(error) bool { return true }
	calls := 0

	err := p.Do(context.Background(), "test_op", func(context.Context) error {
		calls++
		return errors.New("anything")
	})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, calls)
}

func TestDoValue_ReturnsValue(t *testing.T) {
	p, _ := testPolicy(3)
	calls := 0

	v, err := DoValue(context.Background(), p, "test_op", func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errTransient
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestDo_ZeroAttemptsStillCallsOnce(t *testing.T) {
	p, _ := testPolicy(0)
	calls := 0
	_ = p.Do(context.Background(), "test_op", func(context.Context) error {
		calls++
		return nil
	})
	assert.Equal(t, 1, calls)
}

type statusErr int

func (s statusErr) Error() string   { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) StatusCode() int { return int(s) }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"context canceled", context.Canceled, false},
		{"connection refused", errTransient, true},
		{"wrapped connection reset", fmt.Errorf("query: %w", syscall.ECONNRESET), true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"es too many requests", statusErr(429), true},
		{"es bad gateway", statusErr(502), true},
		{"es unavailable", statusErr(503), true},
		{"es gateway timeout", statusErr(504), true},
		{"es bad request", statusErr(400), false},
		{"es not found", statusErr(404), false},
		{"breaker open", gobreaker.ErrOpenState, true},
		{"permanent wrapping transient", Permanent(errTransient), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
