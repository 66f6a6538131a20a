// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/state"
)

func newOnceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run one round for every document type and exit",
		Long:  "Runs the Filmwork, Genre and Person cycles once and prints the round status. Exits non-zero if any cycle failed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := state.Open(ctx, a.cfg.State)
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
			_, roundErr := scheduler.RunRound(ctx)

			out, err := json.MarshalIndent(scheduler.Status(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if roundErr != nil {
				logging.Error().Err(roundErr).Msg("ETL round failed")
				return roundErr
			}
			return nil
		},
	}
}
