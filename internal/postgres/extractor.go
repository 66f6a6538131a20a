// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/metrics"
	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/retry"
)

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 500

// Conn is the subset of *pgxpool.Pool the extractor needs.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Options configures an Extractor.
type Options struct {
	// Schema holding the content tables.
	Schema string
	// PageSize is the number of rows per cursor fetch.
	PageSize int
	// Retry wraps transaction and cursor creation.
	Retry retry.Policy
}

// Extractor runs the change-detection and document queries.
type Extractor struct {
	conn     Conn
	q        queries
	pageSize int
	retry    retry.Policy
}

// NewExtractor creates an Extractor over conn.
func NewExtractor(conn Conn, opts Options) *Extractor {
	if opts.Schema == "" {
		opts.Schema = "content"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Extractor{
		conn:     conn,
		q:        queries{schema: opts.Schema},
		pageSize: opts.PageSize,
		retry:    opts.Retry,
	}
}

// ChangedSince returns rows of table updated strictly after since.
func (e *Extractor) ChangedSince(ctx context.Context, table string, since time.Time) ([]models.IDStamp, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	return e.idStamps(ctx, "changed_since_"+table, e.q.changedSince(table), since)
}

// LatestRow returns the most recently updated row of table. found is false
// for an empty table.
func (e *Extractor) LatestRow(ctx context.Context, table string) (models.IDStamp, bool, error) {
	if err := checkTable(table); err != nil {
		return models.IDStamp{}, false, err
	}
	rows, err := e.idStamps(ctx, "latest_"+table, e.q.latestRow(table))
	if err != nil || len(rows) == 0 {
		return models.IDStamp{}, false, err
	}
	return rows[0], true, nil
}

// AllIDs returns every row of table.
func (e *Extractor) AllIDs(ctx context.Context, table string) ([]models.IDStamp, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	return e.idStamps(ctx, "all_"+table, e.q.allIDs(table))
}

// FilmWorkIDsByGenres returns the film works linked to any of genreIDs.
func (e *Extractor) FilmWorkIDsByGenres(ctx context.Context, genreIDs []uuid.UUID) ([]models.IDStamp, error) {
	if len(genreIDs) == 0 {
		return nil, nil
	}
	return e.idStamps(ctx, "film_works_by_genres", e.q.filmWorksByGenres(), uuidStrings(genreIDs))
}

// FilmWorkIDsByPersons returns the film works linked to any of personIDs.
func (e *Extractor) FilmWorkIDsByPersons(ctx context.Context, personIDs []uuid.UUID) ([]models.IDStamp, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	return e.idStamps(ctx, "film_works_by_persons", e.q.filmWorksByPersons(), uuidStrings(personIDs))
}

// StreamFilmworks passes the aggregated film work rows for ids to fn one
// page at a time.
func (e *Extractor) StreamFilmworks(ctx context.Context, ids []uuid.UUID, fn func([]models.FilmworkRow) error) error {
	return stream(ctx, e, "filmwork_documents", e.q.filmworkDocuments(), ids, fn)
}

// StreamPersons passes the aggregated person rows for ids to fn one page at
// a time.
func (e *Extractor) StreamPersons(ctx context.Context, ids []uuid.UUID, fn func([]models.PersonRow) error) error {
	return stream(ctx, e, "person_documents", e.q.personDocuments(), ids, fn)
}

// StreamGenres passes the genre rows for ids to fn one page at a time.
func (e *Extractor) StreamGenres(ctx context.Context, ids []uuid.UUID, fn func([]models.GenreRow) error) error {
	return stream(ctx, e, "genre_documents", e.q.genreDocuments(), ids, fn)
}

func (e *Extractor) idStamps(ctx context.Context, name, sql string, args ...any) ([]models.IDStamp, error) {
	start := time.Now()
	out, err := retry.DoValue(ctx, e.retry, name, func(ctx context.Context) ([]models.IDStamp, error) {
		rows, err := e.conn.Query(ctx, sql, args...)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, pgx.RowToStructByName[models.IDStamp])
	})
	metrics.RecordQuery(name, time.Since(start), err)
	if err != nil {
		logQueryError(ctx, name, err)
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	return out, nil
}

func logQueryError(ctx context.Context, name string, err error) {
	ev := logging.Ctx(ctx).Error().Err(err).Str("query", name)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		ev = ev.Str("sqlstate", pgErr.Code).Str("detail", pgErr.Detail)
	}
	ev.Msg("Postgres query failed")
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
