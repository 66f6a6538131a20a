// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package models

import "github.com/google/uuid"

// Document is a search document ready for indexing. DocumentID is used as the
// Elasticsearch _id, so reloading the same row overwrites instead of duplicating.
type Document interface {
	DocumentID() string
}

// ReleaseDateLayout is the date format of FilmworkDocument.ReleaseDate.
const ReleaseDateLayout = "2006-01-02"

// FilmworkDocument is indexed into the movies index.
type FilmworkDocument struct {
	UUID        uuid.UUID `json:"uuid"`
	IMDbRating  *float64  `json:"imdb_rating"`
	Genre       []Ref     `json:"genre"`
	Title       string    `json:"title"`
	TitleRu     string    `json:"title_ru"`
	Description *string   `json:"description"`

	DescriptionRu *string `json:"description_ru"`
	IMDbTitleID   *string `json:"imdb_titleid"`
	IMDbImage     *string `json:"imdb_image"`

	Directors []Ref `json:"directors"`
	Actors    []Ref `json:"actors"`
	Writers   []Ref `json:"writers"`

	DirectorsNames   []string `json:"directors_names"`
	ActorsNames      []string `json:"actors_names"`
	WritersNames     []string `json:"writers_names"`
	DirectorsNamesRu []string `json:"directors_names_ru"`
	ActorsNamesRu    []string `json:"actors_names_ru"`
	WritersNamesRu   []string `json:"writers_names_ru"`

	SubscriptionRequired bool   `json:"subscription_required"`
	ReleaseDate          string `json:"release_date"` // YYYY-MM-DD
	RuntimeMins          int    `json:"runtime_mins"`
}

func (d FilmworkDocument) DocumentID() string { return d.UUID.String() }

// PersonDocument is indexed into the persons index.
type PersonDocument struct {
	UUID       uuid.UUID   `json:"uuid"`
	FullName   string      `json:"full_name"`
	FullNameRu string      `json:"full_name_ru"`
	Roles      []string    `json:"roles"`
	FilmIDs    []uuid.UUID `json:"film_ids"`
}

func (d PersonDocument) DocumentID() string { return d.UUID.String() }

// GenreDocument is indexed into the genres index.
type GenreDocument struct {
	UUID        uuid.UUID `json:"uuid"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
}

func (d GenreDocument) DocumentID() string { return d.UUID.String() }
