// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/postgres"
)

// Extractor is the read side a cycle needs from the catalog database.
// It is satisfied by *postgres.Extractor.
type Extractor interface {
	ChangedSince(ctx context.Context, table string, since time.Time) ([]models.IDStamp, error)
	LatestRow(ctx context.Context, table string) (models.IDStamp, bool, error)
	AllIDs(ctx context.Context, table string) ([]models.IDStamp, error)
	FilmWorkIDsByGenres(ctx context.Context, genreIDs []uuid.UUID) ([]models.IDStamp, error)
	FilmWorkIDsByPersons(ctx context.Context, personIDs []uuid.UUID) ([]models.IDStamp, error)

	StreamFilmworks(ctx context.Context, ids []uuid.UUID, fn func([]models.FilmworkRow) error) error
	StreamPersons(ctx context.Context, ids []uuid.UUID, fn func([]models.PersonRow) error) error
	StreamGenres(ctx context.Context, ids []uuid.UUID, fn func([]models.GenreRow) error) error
}

// Changes is the outcome of resolving a watermark: the ids to reload and the
// watermark to commit once they are loaded.
type Changes struct {
	IDs       []uuid.UUID
	Watermark models.Watermark
	// Advanced reports whether any watermark field moved forward.
	Advanced bool
	Bulk     bool
}

// Empty reports that nothing changed since the watermark. An empty Changes
// is never committed.
func (c Changes) Empty() bool {
	return len(c.IDs) == 0 && !c.Advanced
}

// ChangeResolver decides which rows of one document type must be reloaded.
type ChangeResolver interface {
	Resolve(ctx context.Context, ex Extractor, w models.Watermark) (Changes, error)
}

// FilmworkResolver reloads film works that changed themselves or reference a
// changed genre or person.
type FilmworkResolver struct{}

// Resolve implements ChangeResolver.
func (FilmworkResolver) Resolve(ctx context.Context, ex Extractor, w models.Watermark) (Changes, error) {
	if !w.FlagSuccess {
		return resolveBulk(ctx, ex, w, postgres.TableFilmWork, models.DocTypeFilmwork.TrackedFields())
	}

	next := w
	advanced := false
	ids := newIDSet()

	// Film works changed directly.
	changed, err := ex.ChangedSince(ctx, postgres.TableFilmWork, w.FilmworkUpdatedAt)
	if err != nil {
		return Changes{}, err
	}
	advanced = next.Advance(models.FieldFilmworkUpdatedAt, maxUpdatedAt(changed)) || advanced
	ids.addStamps(changed)

	// Film works reached through a changed genre.
	genres, err := ex.ChangedSince(ctx, postgres.TableGenre, w.GenreUpdatedAt)
	if err != nil {
		return Changes{}, err
	}
	if len(genres) > 0 {
		advanced = next.Advance(models.FieldGenreUpdatedAt, maxUpdatedAt(genres)) || advanced
		linked, err := ex.FilmWorkIDsByGenres(ctx, stampIDs(genres))
		if err != nil {
			return Changes{}, err
		}
		ids.addStamps(linked)
	}

	// Film works reached through a changed person.
	persons, err := ex.ChangedSince(ctx, postgres.TablePerson, w.PersonUpdatedAt)
	if err != nil {
		return Changes{}, err
	}
	if len(persons) > 0 {
		advanced = next.Advance(models.FieldPersonUpdatedAt, maxUpdatedAt(persons)) || advanced
		linked, err := ex.FilmWorkIDsByPersons(ctx, stampIDs(persons))
		if err != nil {
			return Changes{}, err
		}
		ids.addStamps(linked)
	}

	if !advanced {
		return Changes{Watermark: w}, nil
	}

	logging.Ctx(ctx).Debug().
		Int("film_works", len(changed)).
		Int("genres", len(genres)).
		Int("persons", len(persons)).
		Int("ids", ids.len()).
		Msg("Resolved film work changes")
	return Changes{IDs: ids.list(), Watermark: next, Advanced: true}, nil
}

// PersonResolver reloads persons updated after the watermark.
type PersonResolver struct{}

// Resolve implements ChangeResolver.
func (PersonResolver) Resolve(ctx context.Context, ex Extractor, w models.Watermark) (Changes, error) {
	return resolveOwnTable(ctx, ex, w, postgres.TablePerson, models.FieldPersonUpdatedAt)
}

// GenreResolver reloads genres updated after the watermark.
type GenreResolver struct{}

// Resolve implements ChangeResolver.
func (GenreResolver) Resolve(ctx context.Context, ex Extractor, w models.Watermark) (Changes, error) {
	return resolveOwnTable(ctx, ex, w, postgres.TableGenre, models.FieldGenreUpdatedAt)
}

func resolveOwnTable(ctx context.Context, ex Extractor, w models.Watermark, table string, field models.WatermarkField) (Changes, error) {
	if !w.FlagSuccess {
		return resolveBulk(ctx, ex, w, table, []models.WatermarkField{field})
	}

	changed, err := ex.ChangedSince(ctx, table, w.Get(field))
	if err != nil {
		return Changes{}, err
	}
	next := w
	if !next.Advance(field, maxUpdatedAt(changed)) {
		return Changes{Watermark: w}, nil
	}
	return Changes{IDs: stampIDs(changed), Watermark: next, Advanced: true}, nil
}

// resolveBulk selects every row of table and seeds each field from the
// latest row of its own table.
func resolveBulk(ctx context.Context, ex Extractor, w models.Watermark, table string, fields []models.WatermarkField) (Changes, error) {
	next := w
	advanced := false
	for _, f := range fields {
		latest, found, err := ex.LatestRow(ctx, f.Table())
		if err != nil {
			return Changes{}, fmt.Errorf("seed %s: %w", f, err)
		}
		if found {
			advanced = next.Advance(f, latest.UpdatedAt) || advanced
		}
	}

	all, err := ex.AllIDs(ctx, table)
	if err != nil {
		return Changes{}, err
	}
	if len(all) == 0 {
		return Changes{Watermark: w, Bulk: true}, nil
	}

	logging.Ctx(ctx).Info().Int("rows", len(all)).Str("table", table).Msg("Bulk mode: loading all rows")
	return Changes{IDs: stampIDs(all), Watermark: next, Advanced: advanced, Bulk: true}, nil
}

func maxUpdatedAt(stamps []models.IDStamp) time.Time {
	var latest time.Time
	for _, s := range stamps {
		if s.UpdatedAt.After(latest) {
			latest = s.UpdatedAt
		}
	}
	return latest
}

func stampIDs(stamps []models.IDStamp) []uuid.UUID {
	out := make([]uuid.UUID, len(stamps))
	for i, s := range stamps {
		out[i] = s.ID
	}
	return out
}

// idSet keeps first-seen order so the reload order follows the change queries.
type idSet struct {
	seen  map[uuid.UUID]struct{}
	order []uuid.UUID
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[uuid.UUID]struct{})}
}

func (s *idSet) addStamps(stamps []models.IDStamp) {
	for _, st := range stamps {
		if _, ok := s.seen[st.ID]; ok {
			continue
		}
		s.seen[st.ID] = struct{}{}
		s.order = append(s.order, st.ID)
	}
}

func (s *idSet) len() int { return len(s.order) }

func (s *idSet) list() []uuid.UUID { return s.order }
