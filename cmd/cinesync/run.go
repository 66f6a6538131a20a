// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinesync/internal/etl"
	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/server"
	"github.com/tomtom215/cinesync/internal/state"
	"github.com/tomtom215/cinesync/internal/supervisor"
	"github.com/tomtom215/cinesync/internal/supervisor/services"
)

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sync loop and the ops server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context())
		},
	}
}

func (a *app) run(ctx context.Context) error {
	cfg := a.cfg
	logging.Info().
		Strs("es_addresses", cfg.Elasticsearch.NodeAddresses()).
		Str("db_host", cfg.Postgres.Host).
		Str("state_backend", cfg.State.Backend).
		Dur("sleep_timeout", cfg.App.SleepTimeout).
		Msg("Starting CineSync with supervisor tree")

	store, err := state.Open(ctx, cfg.State)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing state store")
		}
	}()

	if _, err := a.provisionIndices(ctx); err != nil {
		return err
	}

	scheduler := a.newScheduler(store)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddSyncService(services.NewSyncService(scheduler))

	if cfg.Server.Enabled {
		srv := server.NewHTTPServer(cfg.Server, server.New(scheduler, store).Router())
		tree.AddOpsService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", srv.Addr).Msg("Ops server service added")
	}

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown requested, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("CineSync stopped")
	return nil
}

func (a *app) newScheduler(store *state.Store) *etl.Scheduler {
	cycles := etl.NewCycles(store, etl.Options{ChunkSize: a.cfg.ETL.ChunkSize})
	return etl.NewScheduler(cycles, etl.NewOpener(a.cfg), a.cfg.App.SleepTimeout)
}
