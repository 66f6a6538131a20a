// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/metrics"
	"github.com/tomtom215/cinesync/internal/retry"
)

// stream declares a cursor for sql inside a read-only transaction and feeds
// fn one page of rows at a time. An error from fn stops the stream and is
// returned unwrapped.
//
// FETCH and CLOSE use the simple protocol: the statement text is the same for
// every cursor of a name, and a cached prepared FETCH would keep the row
// description of the first query it saw.
func stream[T any](ctx context.Context, e *Extractor, name, sql string, ids []uuid.UUID, fn func([]T) error) (err error) {
	if len(ids) == 0 {
		return nil
	}
	cursor := pgx.Identifier{"cinesync_" + name}.Sanitize()
	log := logging.Ctx(ctx)
	start := time.Now()
	total := 0
	defer func() {
		metrics.RecordQuery(name, time.Since(start), err)
	}()

	tx, err := retry.DoValue(ctx, e.retry, name+"_open", func(ctx context.Context) (pgx.Tx, error) {
		tx, err := e.conn.BeginTx(ctx, pgx.TxOptions{
			IsoLevel:   pgx.RepeatableRead,
			AccessMode: pgx.ReadOnly,
		})
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, "DECLARE "+cursor+" NO SCROLL CURSOR FOR "+sql, uuidStrings(ids)); err != nil {
			_ = tx.Rollback(ctx)
			return nil, err
		}
		return tx, nil
	})
	if err != nil {
		logQueryError(ctx, name, err)
		return fmt.Errorf("open cursor %s: %w", name, err)
	}
	defer func() {
		// Read-only: rolling back releases the snapshot the same as a commit.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Warn().Err(rbErr).Str("query", name).Msg("Failed to close read-only transaction")
		}
	}()

	fetch := "FETCH FORWARD " + strconv.Itoa(e.pageSize) + " FROM " + cursor
	for {
		rows, err := tx.Query(ctx, fetch, pgx.QueryExecModeSimpleProtocol)
		if err != nil {
			logQueryError(ctx, name, err)
			return fmt.Errorf("fetch %s: %w", name, err)
		}
		page, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
		if err != nil {
			logQueryError(ctx, name, err)
			return fmt.Errorf("scan %s: %w", name, err)
		}
		if len(page) == 0 {
			break
		}

		total += len(page)
		log.Debug().Str("query", name).Int("page_rows", len(page)).Int("total_rows", total).Msg("Fetched page")

		if err := fn(page); err != nil {
			return err
		}
		if len(page) < e.pageSize {
			break
		}
	}

	if _, err := tx.Exec(ctx, "CLOSE "+cursor, pgx.QueryExecModeSimpleProtocol); err != nil {
		log.Warn().Err(err).Str("query", name).Msg("Failed to close cursor")
	}
	return nil
}
