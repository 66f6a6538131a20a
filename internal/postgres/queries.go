// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Source tables.
const (
	TableFilmWork      = "film_work"
	TableGenre         = "genre"
	TablePerson        = "person"
	tableGenreFilmWork = "genre_film_work"
	tablePersonFilm    = "person_film_work"
)

// ErrUnknownTable is returned for a table outside the change-tracked set.
var ErrUnknownTable = errors.New("unknown source table")

func checkTable(table string) error {
	switch table {
	case TableFilmWork, TableGenre, TablePerson:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

// queries holds every statement with the schema name already quoted in.
type queries struct {
	schema string
}

func (q queries) ident(table string) string {
	return pgx.Identifier{q.schema, table}.Sanitize()
}

func (q queries) changedSince(table string) string {
	return fmt.Sprintf(`
		SELECT id, updated_at
		FROM %s
		WHERE updated_at > $1
		ORDER BY updated_at, id`, q.ident(table))
}

func (q queries) latestRow(table string) string {
	return fmt.Sprintf(`
		SELECT id, updated_at
		FROM %s
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`, q.ident(table))
}

func (q queries) allIDs(table string) string {
	return fmt.Sprintf(`
		SELECT id, updated_at
		FROM %s
		ORDER BY updated_at, id`, q.ident(table))
}

func (q queries) filmWorksByGenres() string {
	return fmt.Sprintf(`
		SELECT DISTINCT fw.id, fw.updated_at
		FROM %s fw
		JOIN %s gfw ON gfw.film_work_id = fw.id
		WHERE gfw.genre_id = ANY($1::uuid[])
		ORDER BY fw.updated_at, fw.id`, q.ident(TableFilmWork), q.ident(tableGenreFilmWork))
}

func (q queries) filmWorksByPersons() string {
	return fmt.Sprintf(`
		SELECT DISTINCT fw.id, fw.updated_at
		FROM %s fw
		JOIN %s pfw ON pfw.film_work_id = fw.id
		WHERE pfw.person_id = ANY($1::uuid[])
		ORDER BY fw.updated_at, fw.id`, q.ident(TableFilmWork), q.ident(tablePersonFilm))
}

// filmworkDocuments aggregates genres and persons by role. FILTER drops the
// NULL rows produced by the outer joins, so a film work without writers gets
// a NULL writers column rather than [{"uuid": null, ...}].
func (q queries) filmworkDocuments() string {
	return fmt.Sprintf(`
		SELECT
			fw.id,
			fw.rating,
			fw.title,
			fw.title_ru,
			fw.description,
			fw.description_ru,
			fw.imdb_titleid,
			fw.runtime_mins,
			fw.imdb_image,
			fw.creation_date,
			fw.subscription_required,
			jsonb_agg(DISTINCT jsonb_build_object('uuid', g.id, 'name', g.name))
				FILTER (WHERE g.id IS NOT NULL) AS genres,
			jsonb_agg(DISTINCT jsonb_build_object('uuid', p.id, 'name', p.full_name))
				FILTER (WHERE pfw.role = 'director' AND p.id IS NOT NULL) AS directors,
			jsonb_agg(DISTINCT jsonb_build_object('uuid', p.id, 'name', p.full_name))
				FILTER (WHERE pfw.role = 'actor' AND p.id IS NOT NULL) AS actors,
			jsonb_agg(DISTINCT jsonb_build_object('uuid', p.id, 'name', p.full_name))
				FILTER (WHERE pfw.role = 'writer' AND p.id IS NOT NULL) AS writers,
			array_agg(DISTINCT p.full_name::text)
				FILTER (WHERE pfw.role = 'director' AND p.full_name IS NOT NULL) AS directors_names,
			array_agg(DISTINCT p.full_name::text)
				FILTER (WHERE pfw.role = 'actor' AND p.full_name IS NOT NULL) AS actors_names,
			array_agg(DISTINCT p.full_name::text)
				FILTER (WHERE pfw.role = 'writer' AND p.full_name IS NOT NULL) AS writers_names,
			array_agg(DISTINCT p.full_name_ru::text)
				FILTER (WHERE pfw.role = 'director' AND p.full_name_ru IS NOT NULL) AS directors_names_ru,
			array_agg(DISTINCT p.full_name_ru::text)
				FILTER (WHERE pfw.role = 'actor' AND p.full_name_ru IS NOT NULL) AS actors_names_ru,
			array_agg(DISTINCT p.full_name_ru::text)
				FILTER (WHERE pfw.role = 'writer' AND p.full_name_ru IS NOT NULL) AS writers_names_ru
		FROM %s fw
		LEFT JOIN %s gfw ON gfw.film_work_id = fw.id
		LEFT JOIN %s g ON g.id = gfw.genre_id
		LEFT JOIN %s pfw ON pfw.film_work_id = fw.id
		LEFT JOIN %s p ON p.id = pfw.person_id
		WHERE fw.id = ANY($1::uuid[])
		GROUP BY fw.id
		ORDER BY fw.updated_at, fw.id`,
		q.ident(TableFilmWork), q.ident(tableGenreFilmWork), q.ident(TableGenre),
		q.ident(tablePersonFilm), q.ident(TablePerson))
}

func (q queries) personDocuments() string {
	return fmt.Sprintf(`
		SELECT
			p.id,
			p.full_name,
			p.full_name_ru,
			array_agg(DISTINCT fw.id::text) FILTER (WHERE fw.id IS NOT NULL) AS film_ids,
			array_agg(DISTINCT pfw.role::text) FILTER (WHERE pfw.role IS NOT NULL) AS roles
		FROM %s p
		LEFT JOIN %s pfw ON pfw.person_id = p.id
		LEFT JOIN %s fw ON fw.id = pfw.film_work_id
		WHERE p.id = ANY($1::uuid[])
		GROUP BY p.id
		ORDER BY p.updated_at, p.id`,
		q.ident(TablePerson), q.ident(tablePersonFilm), q.ident(TableFilmWork))
}

func (q queries) genreDocuments() string {
	return fmt.Sprintf(`
		SELECT g.id, g.name, g.description
		FROM %s g
		WHERE g.id = ANY($1::uuid[])
		ORDER BY g.updated_at, g.id`, q.ident(TableGenre))
}
