// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/validation"
)

// DocumentTransformer maps a source row to its search document. Missing
// optional data gets a default; missing required data is an error.
type DocumentTransformer[R models.Row] interface {
	Transform(row R) (models.Document, error)
}

// FilmworkTransformer builds movie documents.
type FilmworkTransformer struct {
	// Now supplies the release date of rows without a creation date.
	Now func() time.Time
}

// Transform implements DocumentTransformer.
func (t FilmworkTransformer) Transform(row models.FilmworkRow) (models.Document, error) {
	if err := validation.ValidateRow(row); err != nil {
		return nil, err
	}

	releaseDate := t.today()
	if row.CreationDate != nil {
		releaseDate = *row.CreationDate
	}
	subscription := true
	if row.SubscriptionRequired != nil {
		subscription = *row.SubscriptionRequired
	}
	runtime := 0
	if row.RuntimeMins != nil {
		runtime = int(*row.RuntimeMins)
	}

	return models.FilmworkDocument{
		UUID:          row.ID,
		IMDbRating:    row.Rating,
		Genre:         refs(row.Genres),
		Title:         *row.Title,
		TitleRu:       *row.TitleRu,
		Description:   nullIfEmpty(row.Description),
		DescriptionRu: nullIfEmpty(row.DescriptionRu),
		IMDbTitleID:   nullIfEmpty(row.IMDbTitleID),
		IMDbImage:     nullIfEmpty(row.IMDbImage),

		Directors: refs(row.Directors),
		Actors:    refs(row.Actors),
		Writers:   refs(row.Writers),

		DirectorsNames:   strs(row.DirectorsNames),
		ActorsNames:      strs(row.ActorsNames),
		WritersNames:     strs(row.WritersNames),
		DirectorsNamesRu: strs(row.DirectorsNamesRu),
		ActorsNamesRu:    strs(row.ActorsNamesRu),
		WritersNamesRu:   strs(row.WritersNamesRu),

		SubscriptionRequired: subscription,
		ReleaseDate:          releaseDate.Format(models.ReleaseDateLayout),
		RuntimeMins:          runtime,
	}, nil
}

func (t FilmworkTransformer) today() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// PersonTransformer builds person documents.
type PersonTransformer struct{}

// Transform implements DocumentTransformer.
func (PersonTransformer) Transform(row models.PersonRow) (models.Document, error) {
	if err := validation.ValidateRow(row); err != nil {
		return nil, err
	}

	filmIDs := make([]uuid.UUID, 0, len(row.FilmIDs))
	for _, s := range row.FilmIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("person %s: film id %q: %w", row.ID, s, err)
		}
		filmIDs = append(filmIDs, id)
	}

	return models.PersonDocument{
		UUID:       row.ID,
		FullName:   *row.FullName,
		FullNameRu: *row.FullNameRu,
		Roles:      strs(row.Roles),
		FilmIDs:    filmIDs,
	}, nil
}

// GenreTransformer builds genre documents.
type GenreTransformer struct{}

// Transform implements DocumentTransformer.
func (GenreTransformer) Transform(row models.GenreRow) (models.Document, error) {
	if err := validation.ValidateRow(row); err != nil {
		return nil, err
	}
	return models.GenreDocument{
		UUID:        row.ID,
		Name:        *row.Name,
		Description: nullIfEmpty(row.Description),
	}, nil
}

func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func refs(in []models.Ref) []models.Ref {
	if in == nil {
		return []models.Ref{}
	}
	return in
}

func strs(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
