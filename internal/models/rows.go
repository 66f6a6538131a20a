// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package models

import (
	"time"

	"github.com/google/uuid"
)

// Row is a full-document source row of any type.
type Row interface {
	RowID() uuid.UUID
}

// Ref is a {uuid, name} pair aggregated from a join table.
type Ref struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// FilmworkRow is one aggregated film_work row. Nullable columns are pointers;
// aggregates over empty joins are nil. The db tags are the column aliases of
// the extraction query.
//
// The validate tags mark the columns a document cannot be built without.
// On pointer fields "required" means non-NULL; an empty string passes.
type FilmworkRow struct {
	ID                   uuid.UUID  `db:"id" validate:"required"`
	Rating               *float64   `db:"rating"`
	Title                *string    `db:"title" validate:"required"`
	TitleRu              *string    `db:"title_ru" validate:"required"`
	Description          *string    `db:"description"`
	DescriptionRu        *string    `db:"description_ru"`
	IMDbTitleID          *string    `db:"imdb_titleid"`
	RuntimeMins          *int32     `db:"runtime_mins"`
	IMDbImage            *string    `db:"imdb_image"`
	CreationDate         *time.Time `db:"creation_date"`
	SubscriptionRequired *bool      `db:"subscription_required"`

	Genres    []Ref `db:"genres"`
	Directors []Ref `db:"directors"`
	Actors    []Ref `db:"actors"`
	Writers   []Ref `db:"writers"`

	DirectorsNames   []string `db:"directors_names"`
	ActorsNames      []string `db:"actors_names"`
	WritersNames     []string `db:"writers_names"`
	DirectorsNamesRu []string `db:"directors_names_ru"`
	ActorsNamesRu    []string `db:"actors_names_ru"`
	WritersNamesRu   []string `db:"writers_names_ru"`
}

func (r FilmworkRow) RowID() uuid.UUID { return r.ID }

// PersonRow is one aggregated person row.
type PersonRow struct {
	ID         uuid.UUID `db:"id" validate:"required"`
	FullName   *string   `db:"full_name" validate:"required"`
	FullNameRu *string   `db:"full_name_ru" validate:"required"`
	FilmIDs    []string  `db:"film_ids"`
	Roles      []string  `db:"roles"`
}

func (r PersonRow) RowID() uuid.UUID { return r.ID }

// GenreRow is one genre row.
type GenreRow struct {
	ID          uuid.UUID `db:"id" validate:"required"`
	Name        *string   `db:"name" validate:"required"`
	Description *string   `db:"description"`
}

func (r GenreRow) RowID() uuid.UUID { return r.ID }
