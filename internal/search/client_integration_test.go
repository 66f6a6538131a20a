// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

//go:build integration

package search

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/cinesync/internal/config"
	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/retry"
	"github.com/tomtom215/cinesync/internal/testinfra"
)

func TestClient_Integration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	es, err := testinfra.NewElasticsearchContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { testinfra.CleanupContainer(t, ctx, es) })

	cfg := config.ElasticsearchConfig{
		Addresses:      []string{es.URL},
		FilmWorksIndex: "movies",
		PersonsIndex:   "persons",
		GenresIndex:    "genres",
		RequestTimeout: 30 * time.Second,
	}
	policy := retry.Policy{StartDelay: 100 * time.Millisecond, BorderDelay: time.Second, MaxAttempts: 5}

	c, err := Connect(ctx, cfg, Options{Retry: policy, FailOnPartialBulk: true})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	statuses, err := c.EnsureIndices(ctx)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.True(t, s.Created, s.Index)
	}

	statuses, err = c.EnsureIndices(ctx)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.False(t, s.Created, "second run must find %s", s.Index)
	}

	desc := "Space horror"
	rating := 8.5
	doc := models.FilmworkDocument{
		UUID:        uuid.New(),
		IMDbRating:  &rating,
		Title:       "Alien",
		TitleRu:     "Чужой",
		Description: &desc,
		Genre:       []models.Ref{{UUID: uuid.New(), Name: "Sci-Fi"}},
		Directors:   []models.Ref{},
		Actors:      []models.Ref{},
		Writers:     []models.Ref{},
		ReleaseDate: "1979-05-25",
		RuntimeMins: 117,
	}

	for i := 0; i < 2; i++ {
		res, err := c.UpsertBatch(ctx, models.DocTypeFilmwork, []models.Document{doc})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Indexed)
	}

	_, err = c.es.Indices.Refresh(c.es.Indices.Refresh.WithIndex("movies"))
	require.NoError(t, err)
	res, err := c.es.Count(c.es.Count.WithIndex("movies"))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.False(t, res.IsError())
	assert.Contains(t, res.String(), `"count":1`, "re-indexing must overwrite, not duplicate")
}
