// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

import (
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/postgres"
	"github.com/tomtom215/cinesync/internal/search"
	"github.com/tomtom215/cinesync/internal/state"
)

var (
	t0        = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fixedTime = func() time.Time { return fixedNow }
)

func strPtr(s string) *string { return &s }

// fakeDB is an in-memory catalog implementing Extractor.
type fakeDB struct {
	mu       sync.Mutex
	pageSize int

	stamps map[string]map[uuid.UUID]time.Time
	films  map[uuid.UUID]models.FilmworkRow
	people map[uuid.UUID]models.PersonRow
	genres map[uuid.UUID]models.GenreRow

	genreFilms  map[uuid.UUID][]uuid.UUID
	personFilms map[uuid.UUID][]uuid.UUID

	streamErr error
	changeErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		pageSize: 7,
		stamps: map[string]map[uuid.UUID]time.Time{
			postgres.TableFilmWork: {},
			postgres.TableGenre:    {},
			postgres.TablePerson:   {},
		},
		films:       map[uuid.UUID]models.FilmworkRow{},
		people:      map[uuid.UUID]models.PersonRow{},
		genres:      map[uuid.UUID]models.GenreRow{},
		genreFilms:  map[uuid.UUID][]uuid.UUID{},
		personFilms: map[uuid.UUID][]uuid.UUID{},
	}
}

func (db *fakeDB) addFilm(title string, at time.Time) uuid.UUID {
	id := uuid.New()
	db.films[id] = models.FilmworkRow{ID: id, Title: strPtr(title), TitleRu: strPtr("")}
	db.stamps[postgres.TableFilmWork][id] = at
	return id
}

func (db *fakeDB) addGenre(name string, at time.Time, films ...uuid.UUID) uuid.UUID {
	id := uuid.New()
	db.genres[id] = models.GenreRow{ID: id, Name: strPtr(name)}
	db.stamps[postgres.TableGenre][id] = at
	db.genreFilms[id] = films
	return id
}

func (db *fakeDB) addPerson(name string, at time.Time, films ...uuid.UUID) uuid.UUID {
	id := uuid.New()
	filmIDs := make([]string, len(films))
	for i, f := range films {
		filmIDs[i] = f.String()
	}
	db.people[id] = models.PersonRow{ID: id, FullName: strPtr(name), FullNameRu: strPtr(name), FilmIDs: filmIDs}
	db.stamps[postgres.TablePerson][id] = at
	db.personFilms[id] = films
	return id
}

func (db *fakeDB) touch(table string, id uuid.UUID, at time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.stamps[table][id] = at
}

func (db *fakeDB) sorted(table string, keep func(uuid.UUID, time.Time) bool) []models.IDStamp {
	var out []models.IDStamp
	for id, at := range db.stamps[table] {
		if keep == nil || keep(id, at) {
			out = append(out, models.IDStamp{ID: id, UpdatedAt: at})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

func (db *fakeDB) ChangedSince(_ context.Context, table string, since time.Time) ([]models.IDStamp, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.changeErr != nil {
		return nil, db.changeErr
	}
	return db.sorted(table, func(_ uuid.UUID, at time.Time) bool { return at.After(since) }), nil
}

func (db *fakeDB) LatestRow(_ context.Context, table string) (models.IDStamp, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	all := db.sorted(table, nil)
	if len(all) == 0 {
		return models.IDStamp{}, false, nil
	}
	return all[len(all)-1], true, nil
}

func (db *fakeDB) AllIDs(_ context.Context, table string) ([]models.IDStamp, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.sorted(table, nil), nil
}

func (db *fakeDB) linkedFilms(links map[uuid.UUID][]uuid.UUID, ids []uuid.UUID) []models.IDStamp {
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		for _, f := range links[id] {
			want[f] = true
		}
	}
	return db.sorted(postgres.TableFilmWork, func(id uuid.UUID, _ time.Time) bool { return want[id] })
}

func (db *fakeDB) FilmWorkIDsByGenres(_ context.Context, ids []uuid.UUID) ([]models.IDStamp, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.linkedFilms(db.genreFilms, ids), nil
}

func (db *fakeDB) FilmWorkIDsByPersons(_ context.Context, ids []uuid.UUID) ([]models.IDStamp, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.linkedFilms(db.personFilms, ids), nil
}

func selectRows[R any](db *fakeDB, table string, ids []uuid.UUID, rows map[uuid.UUID]R) []R {
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []R
	for _, st := range db.sorted(table, func(id uuid.UUID, _ time.Time) bool { return want[id] }) {
		out = append(out, rows[st.ID])
	}
	return out
}

func pages[R any](rows []R, size int, fn func([]R) error) error {
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		if err := fn(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (db *fakeDB) StreamFilmworks(_ context.Context, ids []uuid.UUID, fn func([]models.FilmworkRow) error) error {
	db.mu.Lock()
	rows := selectRows(db, postgres.TableFilmWork, ids, db.films)
	err := db.streamErr
	db.mu.Unlock()
	if err != nil {
		return err
	}
	return pages(rows, db.pageSize, fn)
}

func (db *fakeDB) StreamPersons(_ context.Context, ids []uuid.UUID, fn func([]models.PersonRow) error) error {
	db.mu.Lock()
	rows := selectRows(db, postgres.TablePerson, ids, db.people)
	err := db.streamErr
	db.mu.Unlock()
	if err != nil {
		return err
	}
	return pages(rows, db.pageSize, fn)
}

func (db *fakeDB) StreamGenres(_ context.Context, ids []uuid.UUID, fn func([]models.GenreRow) error) error {
	db.mu.Lock()
	rows := selectRows(db, postgres.TableGenre, ids, db.genres)
	err := db.streamErr
	db.mu.Unlock()
	if err != nil {
		return err
	}
	return pages(rows, db.pageSize, fn)
}

// fakeIndex is an in-memory search index implementing Loader.
type fakeIndex struct {
	mu      sync.Mutex
	docs    map[models.DocType]map[string]models.Document
	batches [][]string

	failOnCall int
	failErr    error
	reject     map[string]bool
	calls      int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[models.DocType]map[string]models.Document{}}
}

func (f *fakeIndex) UpsertBatch(_ context.Context, dt models.DocType, docs []models.Document) (search.BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	res := search.BulkResult{Index: string(dt)}
	if f.failOnCall > 0 && f.calls == f.failOnCall {
		return res, f.failErr
	}

	if f.docs[dt] == nil {
		f.docs[dt] = map[string]models.Document{}
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.DocumentID())
		if f.reject[d.DocumentID()] {
			res.Failed = append(res.Failed, search.ItemFailure{ID: d.DocumentID(), Status: 400, Type: "mapper_parsing_exception"})
			continue
		}
		f.docs[dt][d.DocumentID()] = d
		res.Indexed++
	}
	f.batches = append(f.batches, ids)
	return res, nil
}

func (f *fakeIndex) loadedIDs(dt models.DocType) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id := range f.docs[dt] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (f *fakeIndex) batchedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, b := range f.batches {
		out = append(out, b...)
	}
	sort.Strings(out)
	return out
}

func (f *fakeIndex) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = nil
	f.calls = 0
	f.failOnCall = 0
}

func newFileStore(t *testing.T) *state.Store {
	t.Helper()
	return state.NewStore(state.NewFileStorage(filepath.Join(t.TempDir(), "state.json")))
}

func sortedStrings(ids ...uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	sort.Strings(out)
	return out
}
