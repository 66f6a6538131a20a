// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package supervisor provides process supervision for CineSync using suture v4.

The tree separates the sync loop from the ops surface so that either can crash
and restart without the other:

	RootSupervisor ("cinesync")
	├── SyncSupervisor ("sync-layer")
	│   └── SyncService (etl.Scheduler)
	└── OpsSupervisor ("ops-layer")
	    └── HTTPServerService (health, readiness, metrics, state)

# Usage

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddSyncService(services.NewSyncService(scheduler))
	tree.AddOpsService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	return tree.Serve(ctx)

# Failure Handling

Each layer counts failures independently with exponential decay
(FailureDecay seconds). Once the counter exceeds FailureThreshold the layer
waits FailureBackoff before restarting the service again. A failed ETL cycle
is not a service failure: the Scheduler records it in its round status and
keeps looping. Only a Scheduler that cannot start is restarted by the tree.

# Shutdown

Canceling the context passed to Serve stops both layers. The sync service
stops the Scheduler, which lets the running cycle finish its current step
without committing a watermark. Services that miss ShutdownTimeout show up in
UnstoppedServiceReport.

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return nil to stop without restart, an error to be restarted, and return
promptly when the context is canceled.
*/
package supervisor
