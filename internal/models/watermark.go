// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// EpochMin is the sentinel for "never synced": every updated_at is after it.
var EpochMin = time.Time{}

// IDStamp is one (id, updated_at) row from a change-detection query.
type IDStamp struct {
	ID        uuid.UUID `db:"id"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Watermark holds the high-water marks for one document type.
//
// A watermark is only persisted after a cycle completes; FlagSuccess is false
// until the first full bulk load finishes, which selects bulk mode.
type Watermark struct {
	DocType DocType `json:"-"`

	FilmworkUpdatedAt time.Time
	PersonUpdatedAt   time.Time
	GenreUpdatedAt    time.Time

	ESUpdatedAt time.Time // bookkeeping only, never compared
	FlagSuccess bool
}

// NewWatermark returns the zero watermark for dt: all fields at EpochMin, bulk mode.
func NewWatermark(dt DocType) Watermark {
	return Watermark{DocType: dt}
}

// Get returns the value of a watermark field.
func (w Watermark) Get(f WatermarkField) time.Time {
	switch f {
	case FieldFilmworkUpdatedAt:
		return w.FilmworkUpdatedAt
	case FieldPersonUpdatedAt:
		return w.PersonUpdatedAt
	case FieldGenreUpdatedAt:
		return w.GenreUpdatedAt
	default:
		return EpochMin
	}
}

// Set updates a watermark field in place.
func (w *Watermark) Set(f WatermarkField, t time.Time) {
	switch f {
	case FieldFilmworkUpdatedAt:
		w.FilmworkUpdatedAt = t
	case FieldPersonUpdatedAt:
		w.PersonUpdatedAt = t
	case FieldGenreUpdatedAt:
		w.GenreUpdatedAt = t
	}
}

// Advance moves f forward to t. Earlier or equal values are ignored so a
// watermark never regresses. Reports whether the field moved.
func (w *Watermark) Advance(f WatermarkField, t time.Time) bool {
	if !t.After(w.Get(f)) {
		return false
	}
	w.Set(f, t)
	return true
}

const timestampLayout = time.RFC3339Nano

// legacyTimestampLayouts are accepted when reading state written by older deployments.
var legacyTimestampLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// MarshalJSON writes the fields tracked by w.DocType plus es_updated_at and flag_success.
func (w Watermark) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 5)
	for _, f := range w.DocType.TrackedFields() {
		out[string(f)] = w.Get(f).UTC().Format(timestampLayout)
	}
	out["es_updated_at"] = w.ESUpdatedAt.UTC().Format(timestampLayout)
	out["flag_success"] = w.FlagSuccess
	return json.Marshal(out)
}

// UnmarshalJSON reads any known field; w.DocType is preserved.
func (w *Watermark) UnmarshalJSON(data []byte) error {
	var aux struct {
		FilmworkUpdatedAt *string `json:"filmwork_updated_at"`
		PersonUpdatedAt   *string `json:"person_updated_at"`
		GenreUpdatedAt    *string `json:"genre_updated_at"`
		ESUpdatedAt       *string `json:"es_updated_at"`
		FlagSuccess       *bool   `json:"flag_success"`
		LegacyFlag        *bool   `json:"flag_ETL_success"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decode watermark: %w", err)
	}

	fields := []struct {
		raw *string
		dst *time.Time
	}{
		{aux.FilmworkUpdatedAt, &w.FilmworkUpdatedAt},
		{aux.PersonUpdatedAt, &w.PersonUpdatedAt},
		{aux.GenreUpdatedAt, &w.GenreUpdatedAt},
		{aux.ESUpdatedAt, &w.ESUpdatedAt},
	}
	for _, f := range fields {
		if f.raw == nil || *f.raw == "" {
			continue
		}
		t, err := parseTimestamp(*f.raw)
		if err != nil {
			return fmt.Errorf("decode watermark: %w", err)
		}
		*f.dst = t
	}

	switch {
	case aux.FlagSuccess != nil:
		w.FlagSuccess = *aux.FlagSuccess
	case aux.LegacyFlag != nil:
		w.FlagSuccess = *aux.LegacyFlag
	}
	return nil
}
