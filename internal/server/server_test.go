// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/cinesync/internal/config"
	"github.com/tomtom215/cinesync/internal/etl"
	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/state"
)

type fixedStatus struct{ st etl.Status }

func (f fixedStatus) Status() etl.Status { return f.st }

type brokenState struct{}

func (brokenState) Watermarks(context.Context) (map[models.DocType]models.Watermark, error) {
	return nil, errors.New("redis: connection refused")
}

func do(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	srv := New(fixedStatus{etl.Status{Running: true, Rounds: 4}}, nil)

	rec, body := do(t, srv.Router(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["running"])
	assert.EqualValues(t, 4, data["rounds"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name   string
		status etl.Status
		code   int
		label  string
	}{
		{"no round yet", etl.Status{Running: true}, http.StatusServiceUnavailable, "not_ready"},
		{"open failed", etl.Status{Rounds: 1, Error: "open connections: dial tcp"}, http.StatusServiceUnavailable, "not_ready"},
		{
			"cycle failed",
			etl.Status{Rounds: 1, Cycles: []etl.CycleStatus{
				{DocType: models.DocTypeFilmwork, Outcome: "success"},
				{DocType: models.DocTypeGenre, Outcome: "failed", Error: "etl Genre failed while loading: boom"},
			}},
			http.StatusServiceUnavailable, "not_ready",
		},
		{
			"clean round",
			etl.Status{Rounds: 2, Cycles: []etl.CycleStatus{
				{DocType: models.DocTypeFilmwork, Outcome: "success"},
				{DocType: models.DocTypeGenre, Outcome: "no_changes"},
				{DocType: models.DocTypePerson, Outcome: "no_changes"},
			}},
			http.StatusOK, "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, New(fixedStatus{tt.status}, nil).Router(), "/readyz")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.label, body["status"])
		})
	}
}

func TestState(t *testing.T) {
	store := state.NewStore(state.NewFileStorage(filepath.Join(t.TempDir(), "state.json")))
	ctx := context.Background()

	w := models.NewWatermark(models.DocTypeGenre)
	w.GenreUpdatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	w.FlagSuccess = true
	require.NoError(t, store.SaveWatermark(ctx, w))

	rec, body := do(t, New(fixedStatus{}, store).Router(), "/state")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	assert.Len(t, data, 3)
	genre := data["Genre"].(map[string]any)
	assert.Equal(t, "2024-05-01T10:00:00Z", genre["genre_updated_at"])
	assert.Equal(t, true, genre["flag_success"])
	person := data["Person"].(map[string]any)
	assert.NotEqual(t, true, person["flag_success"])
}

func TestStateErrors(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		rec, body := do(t, New(fixedStatus{}, nil).Router(), "/state")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "error", body["status"])
	})

	t.Run("backend failure", func(t *testing.T) {
		rec, body := do(t, New(fixedStatus{}, brokenState{}).Router(), "/state")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "failed to read state", body["error"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	h := New(fixedStatus{}, nil).Router()
	do(t, h, "/healthz")

	rec, _ := do(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ops_http_requests_total{method="GET",route="/healthz",status_code="200"}`)
}

func TestUnknownRoute(t *testing.T) {
	rec, _ := do(t, New(fixedStatus{}, nil).Router(), "/admin")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(config.ServerConfig{Host: "127.0.0.1", Port: 9108}, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:9108", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
}
