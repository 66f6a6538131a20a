// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cinesync/internal/etl"
)

// fakeScheduler matches the StartStopManager interface. failUntil makes the
// first N Start calls fail.
type fakeScheduler struct {
	starts    atomic.Int32
	started   atomic.Bool
	stopped   atomic.Bool
	failUntil int32
	startErr  error
	stopErr   error
}

func (m *fakeScheduler) Start(context.Context) error {
	n := m.starts.Add(1)
	if m.startErr != nil && n <= m.failUntil {
		return m.startErr
	}
	m.started.Store(true)
	return nil
}

func (m *fakeScheduler) Stop() error {
	m.stopped.Store(true)
	return m.stopErr
}

func TestSyncServiceInterface(t *testing.T) {
	var _ suture.Service = (*SyncService)(nil)
	var _ StartStopManager = (*etl.Scheduler)(nil)
}

func TestSyncService(t *testing.T) {
	t.Run("starts and stops the scheduler", func(t *testing.T) {
		mgr := &fakeScheduler{}
		svc := NewSyncService(mgr)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		require.Eventually(t, mgr.started.Load, time.Second, 10*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("service did not stop in time")
		}
		assert.True(t, mgr.stopped.Load())
	})

	t.Run("propagates start error for restart", func(t *testing.T) {
		startErr := errors.New("scheduler is already running")
		mgr := &fakeScheduler{startErr: startErr, failUntil: 1}

		err := NewSyncService(mgr).Serve(context.Background())
		assert.ErrorIs(t, err, startErr)
		assert.False(t, mgr.started.Load())
		assert.False(t, mgr.stopped.Load())
	})

	t.Run("reports stop error", func(t *testing.T) {
		mgr := &fakeScheduler{stopErr: errors.New("scheduler is not running")}
		svc := NewSyncService(mgr)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		require.Eventually(t, mgr.started.Load, time.Second, 10*time.Millisecond)
		cancel()

		err := <-done
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduler stop failed")
	})

	t.Run("String returns service name", func(t *testing.T) {
		assert.Equal(t, "etl-scheduler", NewSyncService(&fakeScheduler{}).String())
	})
}

func TestSyncServiceWithSupervisor(t *testing.T) {
	mgr := &fakeScheduler{startErr: errors.New("boom"), failUntil: 2}
	sup := suture.New("sync-test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
	})
	sup.Add(NewSyncService(mgr))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	errCh := sup.ServeBackground(ctx)

	require.Eventually(t, mgr.started.Load, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, mgr.starts.Load(), int32(3))

	cancel()
	<-errCh
}

func TestSyncServiceRunsRealScheduler(t *testing.T) {
	var rounds atomic.Int32
	open := func(context.Context) (*etl.Resources, error) {
		rounds.Add(1)
		return etl.NewResources(nil, nil), nil
	}
	sched := etl.NewScheduler(nil, open, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSyncService(sched).Serve(ctx) }()

	require.Eventually(t, func() bool { return rounds.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, sched.Status().Running)
}
