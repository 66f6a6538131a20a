// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/retry"
	"github.com/tomtom215/cinesync/internal/search"
)

func newIndicesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indices",
		Short: "Manage the search indices",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create missing indices from their schema definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := a.provisionIndices(cmd.Context())
			if err != nil {
				return err
			}
			writeIndexTable(cmd.OutOrStdout(), statuses)
			return nil
		},
	})
	return cmd
}

func writeIndexTable(w io.Writer, statuses []search.IndexStatus) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Doc Type", "Index", "Created"})
	for _, st := range statuses {
		table.Append([]string{string(st.DocType), st.Index, strconv.FormatBool(st.Created)})
	}
	table.Render()
}

// provisionIndices creates any missing index. Existing indices are left
// untouched.
func (a *app) provisionIndices(ctx context.Context) ([]search.IndexStatus, error) {
	client, err := search.Connect(ctx, a.cfg.Elasticsearch, search.Options{
		Retry: retry.NewPolicy(a.cfg.Backoff),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to elasticsearch: %w", err)
	}
	defer client.Close()

	statuses, err := client.EnsureIndices(ctx)
	if err != nil {
		return nil, fmt.Errorf("provision indices: %w", err)
	}
	for _, st := range statuses {
		logging.Info().Str("doc_type", string(st.DocType)).Str("index", st.Index).Bool("created", st.Created).Msg("Index ready")
	}
	return statuses, nil
}
