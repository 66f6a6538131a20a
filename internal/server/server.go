// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinesync/internal/config"
	"github.com/tomtom215/cinesync/internal/etl"
	"github.com/tomtom215/cinesync/internal/middleware"
	"github.com/tomtom215/cinesync/internal/models"
)

// StatusProvider reports the scheduler's last round.
type StatusProvider interface {
	Status() etl.Status
}

// WatermarkReader reads persisted watermarks.
type WatermarkReader interface {
	Watermarks(ctx context.Context) (map[models.DocType]models.Watermark, error)
}

// Server serves the ops endpoints.
type Server struct {
	status    StatusProvider
	state     WatermarkReader
	startTime time.Time
	timeout   time.Duration
}

// New creates a Server. state may be nil, in which case /state answers 503.
func New(status StatusProvider, state WatermarkReader) *Server {
	return &Server{
		status:    status,
		state:     state,
		startTime: time.Now(),
		timeout:   5 * time.Second,
	}
}

// Router returns the chi handler for all ops routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/state", s.handleState)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// NewHTTPServer binds handler to the configured ops address.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
