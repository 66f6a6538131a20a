// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/postgres"
)

func incremental(dt models.DocType, at time.Time) models.Watermark {
	w := models.NewWatermark(dt)
	for _, f := range dt.TrackedFields() {
		w.Set(f, at)
	}
	w.FlagSuccess = true
	return w
}

func TestFilmworkResolver_BulkSeedsFromLatestRows(t *testing.T) {
	db := newFakeDB()
	f1 := db.addFilm("A", t0.Add(time.Hour))
	f2 := db.addFilm("B", t0.Add(3*time.Hour))
	db.addGenre("Drama", t0.Add(2*time.Hour), f1)
	db.addPerson("Ann", t0.Add(4*time.Hour), f2)

	ch, err := FilmworkResolver{}.Resolve(context.Background(), db, models.NewWatermark(models.DocTypeFilmwork))
	require.NoError(t, err)

	assert.True(t, ch.Bulk)
	assert.False(t, ch.Empty())
	assert.Equal(t, []uuid.UUID{f1, f2}, ch.IDs)
	assert.True(t, ch.Watermark.FilmworkUpdatedAt.Equal(t0.Add(3*time.Hour)))
	assert.True(t, ch.Watermark.GenreUpdatedAt.Equal(t0.Add(2*time.Hour)))
	assert.True(t, ch.Watermark.PersonUpdatedAt.Equal(t0.Add(4*time.Hour)))
}

func TestFilmworkResolver_BulkOnEmptyCatalogIsEmpty(t *testing.T) {
	ch, err := FilmworkResolver{}.Resolve(context.Background(), newFakeDB(), models.NewWatermark(models.DocTypeFilmwork))
	require.NoError(t, err)
	assert.True(t, ch.Empty())
	assert.True(t, ch.Bulk)
}

func TestFilmworkResolver_TransitiveInvalidation(t *testing.T) {
	db := newFakeDB()
	f1 := db.addFilm("F1", t0)
	f2 := db.addFilm("F2", t0)
	f3 := db.addFilm("F3", t0)
	g := db.addGenre("Sci-Fi", t0, f1, f2)
	db.addGenre("Other", t0, f3)

	at := t0.Add(time.Hour)
	db.touch(postgres.TableGenre, g, at)

	w := incremental(models.DocTypeFilmwork, t0)
	ch, err := FilmworkResolver{}.Resolve(context.Background(), db, w)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{f1, f2}, ch.IDs, "F3 is not linked to the changed genre")
	assert.True(t, ch.Advanced)
	assert.True(t, ch.Watermark.GenreUpdatedAt.Equal(at))
	assert.True(t, ch.Watermark.FilmworkUpdatedAt.Equal(t0), "film work field unchanged")
	assert.True(t, ch.Watermark.PersonUpdatedAt.Equal(t0), "person field unchanged")
}

func TestFilmworkResolver_PersonAndGenreTrackedIndependently(t *testing.T) {
	db := newFakeDB()
	f1 := db.addFilm("F1", t0)
	f2 := db.addFilm("F2", t0)
	g := db.addGenre("Drama", t0, f1)
	p := db.addPerson("Ann", t0, f2)

	genreAt := t0.Add(time.Hour)
	personAt := t0.Add(5 * time.Hour)
	db.touch(postgres.TableGenre, g, genreAt)
	db.touch(postgres.TablePerson, p, personAt)

	ch, err := FilmworkResolver{}.Resolve(context.Background(), db, incremental(models.DocTypeFilmwork, t0))
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{f1, f2}, ch.IDs)
	assert.True(t, ch.Watermark.GenreUpdatedAt.Equal(genreAt))
	assert.True(t, ch.Watermark.PersonUpdatedAt.Equal(personAt), "person field must not copy the genre field")
}

func TestFilmworkResolver_UnionIsDeduplicated(t *testing.T) {
	db := newFakeDB()
	f1 := db.addFilm("F1", t0)
	g := db.addGenre("Drama", t0, f1)
	p := db.addPerson("Ann", t0, f1)

	db.touch(postgres.TableFilmWork, f1, t0.Add(time.Minute))
	db.touch(postgres.TableGenre, g, t0.Add(2*time.Minute))
	db.touch(postgres.TablePerson, p, t0.Add(3*time.Minute))

	ch, err := FilmworkResolver{}.Resolve(context.Background(), db, incremental(models.DocTypeFilmwork, t0))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f1}, ch.IDs)
}

func TestFilmworkResolver_NothingChanged(t *testing.T) {
	db := newFakeDB()
	f1 := db.addFilm("F1", t0)
	db.addGenre("Drama", t0, f1)

	w := incremental(models.DocTypeFilmwork, t0)
	ch, err := FilmworkResolver{}.Resolve(context.Background(), db, w)
	require.NoError(t, err)

	assert.True(t, ch.Empty())
	assert.Equal(t, w, ch.Watermark)
}

func TestFilmworkResolver_GenreWithoutFilmsAdvancesOnly(t *testing.T) {
	db := newFakeDB()
	db.addFilm("F1", t0)
	db.addGenre("Unused", t0.Add(time.Hour))

	ch, err := FilmworkResolver{}.Resolve(context.Background(), db, incremental(models.DocTypeFilmwork, t0))
	require.NoError(t, err)

	assert.False(t, ch.Empty())
	assert.Empty(t, ch.IDs)
	assert.True(t, ch.Watermark.GenreUpdatedAt.Equal(t0.Add(time.Hour)))
}

func TestOwnTableResolvers(t *testing.T) {
	tests := []struct {
		name     string
		resolver ChangeResolver
		docType  models.DocType
		table    string
		add      func(db *fakeDB, at time.Time) uuid.UUID
	}{
		{"person", PersonResolver{}, models.DocTypePerson, postgres.TablePerson,
			func(db *fakeDB, at time.Time) uuid.UUID { return db.addPerson("P", at) }},
		{"genre", GenreResolver{}, models.DocTypeGenre, postgres.TableGenre,
			func(db *fakeDB, at time.Time) uuid.UUID { return db.addGenre("G", at) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := newFakeDB()
			old := tt.add(db, t0)
			changed := tt.add(db, t0.Add(2*time.Hour))
			field := tt.docType.OwnField()

			bulk, err := tt.resolver.Resolve(ctx, db, models.NewWatermark(tt.docType))
			require.NoError(t, err)
			assert.True(t, bulk.Bulk)
			assert.Equal(t, []uuid.UUID{old, changed}, bulk.IDs)
			assert.True(t, bulk.Watermark.Get(field).Equal(t0.Add(2*time.Hour)))

			inc, err := tt.resolver.Resolve(ctx, db, incremental(tt.docType, t0.Add(time.Hour)))
			require.NoError(t, err)
			assert.False(t, inc.Bulk)
			assert.Equal(t, []uuid.UUID{changed}, inc.IDs)
			assert.True(t, inc.Watermark.Get(field).Equal(t0.Add(2*time.Hour)))

			w := incremental(tt.docType, t0.Add(2*time.Hour))
			none, err := tt.resolver.Resolve(ctx, db, w)
			require.NoError(t, err)
			assert.True(t, none.Empty())
			assert.True(t, none.Watermark.Get(field).Equal(w.Get(field)), "zero rows keep the field")
		})
	}
}

func TestResolver_QueryErrorPropagates(t *testing.T) {
	db := newFakeDB()
	db.changeErr = errors.New("relation does not exist")

	_, err := PersonResolver{}.Resolve(context.Background(), db, incremental(models.DocTypePerson, t0))
	assert.ErrorIs(t, err, db.changeErr)

	_, err = FilmworkResolver{}.Resolve(context.Background(), db, incremental(models.DocTypeFilmwork, t0))
	assert.ErrorIs(t, err, db.changeErr)
}
