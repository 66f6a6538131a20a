// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package services

import (
	"context"
	"fmt"
)

// StartStopManager is the lifecycle of *etl.Scheduler: Start spawns the
// round loop and returns, Stop blocks until the loop has exited.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncService adapts the scheduler's Start/Stop lifecycle to suture's Serve.
type SyncService struct {
	manager StartStopManager
	name    string
}

// NewSyncService wraps manager.
func NewSyncService(manager StartStopManager) *SyncService {
	return &SyncService{
		manager: manager,
		name:    "etl-scheduler",
	}
}

// Serve starts the scheduler, blocks until ctx is canceled and then stops
// it. A Start failure is returned so the supervisor restarts the service
// with backoff.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("scheduler start failed: %w", err)
	}

	<-ctx.Done()

	// Stop waits for the in-flight round to return.
	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

// String identifies the service in supervisor events.
func (s *SyncService) String() string {
	return s.name
}
