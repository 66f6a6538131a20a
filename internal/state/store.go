// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/metrics"
	"github.com/tomtom215/cinesync/internal/models"
)

// ErrInvalidKey is returned for an empty state key.
var ErrInvalidKey = errors.New("state key must not be empty")

// Storage reads and writes the complete state mapping.
type Storage interface {
	// Retrieve returns the stored mapping. Implementations return an empty
	// mapping, not an error, when nothing has been stored yet.
	Retrieve(ctx context.Context) (map[string]string, error)

	// Save replaces the stored mapping.
	Save(ctx context.Context, state map[string]string) error

	Close() error
}

// Store provides keyed access to the state mapping.
type Store struct {
	storage Storage
	mu      sync.Mutex
}

// NewStore creates a Store over storage.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Get returns the raw value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storage.Retrieve(ctx)
	if err != nil {
		return "", false, fmt.Errorf("retrieve state: %w", err)
	}
	v, ok := st[key]
	return v, ok, nil
}

// Set stores value under key, rewriting the full mapping.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storage.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve state: %w", err)
	}
	st[key] = value
	if err := s.storage.Save(ctx, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storage.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve state: %w", err)
	}
	if _, ok := st[key]; !ok {
		return nil
	}
	delete(st, key)
	if err := s.storage.Save(ctx, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadWatermark returns the persisted watermark for dt, or the zero watermark
// (bulk mode) when none is stored or the stored value cannot be decoded.
func (s *Store) LoadWatermark(ctx context.Context, dt models.DocType) (models.Watermark, error) {
	w := models.NewWatermark(dt)

	raw, ok, err := s.Get(ctx, string(dt))
	if err != nil {
		return w, err
	}
	if !ok {
		return w, nil
	}

	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", string(dt)).
			Msg("Stored watermark is unreadable, falling back to bulk mode")
		return models.NewWatermark(dt), nil
	}
	return w, nil
}

// SaveWatermark persists w under its DocType.
func (s *Store) SaveWatermark(ctx context.Context, w models.Watermark) error {
	if w.DocType == "" {
		return ErrInvalidKey
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode watermark: %w", err)
	}
	if err := s.Set(ctx, string(w.DocType), string(data)); err != nil {
		return err
	}

	for _, f := range w.DocType.TrackedFields() {
		if ts := w.Get(f); !ts.IsZero() {
			metrics.WatermarkTimestamp.WithLabelValues(string(w.DocType), string(f)).Set(float64(ts.Unix()))
		}
	}
	logging.Ctx(ctx).Debug().Str("key", string(w.DocType)).RawJSON("watermark", data).Msg("Saved watermark")
	return nil
}

// Watermarks returns the stored watermark for every document type.
func (s *Store) Watermarks(ctx context.Context) (map[models.DocType]models.Watermark, error) {
	out := make(map[models.DocType]models.Watermark, len(models.SyncOrder))
	for _, dt := range models.SyncOrder {
		w, err := s.LoadWatermark(ctx, dt)
		if err != nil {
			return nil, err
		}
		out[dt] = w
	}
	return out, nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.storage.Close()
}
