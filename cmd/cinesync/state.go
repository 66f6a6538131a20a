// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/state"
)

func newStateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset sync watermarks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored watermark of every document type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(store *state.Store) error {
				marks, err := store.Watermarks(cmd.Context())
				if err != nil {
					return err
				}
				byName := make(map[string]models.Watermark, len(marks))
				for dt, w := range marks {
					byName[string(dt)] = w
				}
				out, err := json.MarshalIndent(byName, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "reset <Filmwork|Genre|Person|all>",
		Short:     "Drop watermarks so the next cycle reloads in bulk mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"Filmwork", "Genre", "Person", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := resetTargets(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store *state.Store) error {
				for _, dt := range targets {
					if err := store.Delete(cmd.Context(), string(dt)); err != nil {
						return fmt.Errorf("reset %s: %w", dt, err)
					}
					logging.Warn().Str("doc_type", string(dt)).Msg("Watermark reset, next cycle runs in bulk mode")
					fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", dt)
				}
				return nil
			})
		},
	})

	return cmd
}

func resetTargets(arg string) ([]models.DocType, error) {
	if strings.EqualFold(arg, "all") {
		return append([]models.DocType(nil), models.SyncOrder...), nil
	}
	dt, err := models.ParseDocType(arg)
	if err != nil {
		return nil, err
	}
	return []models.DocType{dt}, nil
}

func (a *app) withStore(ctx context.Context, fn func(*state.Store) error) error {
	store, err := state.Open(ctx, a.cfg.State)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing state store")
		}
	}()
	return fn(store)
}
