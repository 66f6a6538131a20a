// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/models"
)

// Response is the envelope of every JSON ops response.
type Response struct {
	Status    string    `json:"status"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Uptime  float64 `json:"uptime_seconds"`
	Running bool    `json:"running"`
	Rounds  uint64  `json:"rounds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.status.Status()
	respondJSON(w, http.StatusOK, Response{
		Status: "ok",
		Data: HealthStatus{
			Uptime:  time.Since(s.startTime).Seconds(),
			Running: st.Running,
			Rounds:  st.Rounds,
		},
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	st := s.status.Status()
	if !st.Ready() {
		respondJSON(w, http.StatusServiceUnavailable, Response{Status: "not_ready", Data: st})
		return
	}
	respondJSON(w, http.StatusOK, Response{Status: "ready", Data: st})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		respondError(w, http.StatusServiceUnavailable, "state store not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	marks, err := s.state.Watermarks(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read state", err)
		return
	}

	out := make(map[string]models.Watermark, len(marks))
	for dt, wm := range marks {
		out[string(dt)] = wm
	}
	respondJSON(w, http.StatusOK, Response{Status: "ok", Data: out})
}

func respondJSON(w http.ResponseWriter, status int, resp Response) {
	resp.Timestamp = time.Now().UTC()

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.Error().Err(err).Int("status", status).Msg(message)
	}
	respondJSON(w, status, Response{Status: "error", Error: message})
}
