// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package models

import (
	"fmt"
	"strings"
)

// DocType identifies a search document type. The string value doubles as the
// state store key for that type's watermark.
type DocType string

const (
	DocTypeFilmwork DocType = "Filmwork"
	DocTypePerson   DocType = "Person"
	DocTypeGenre    DocType = "Genre"
)

// SyncOrder is the order in which the scheduler runs cycles within a round.
var SyncOrder = []DocType{DocTypeFilmwork, DocTypeGenre, DocTypePerson}

// ParseDocType accepts any casing of a document type name.
func ParseDocType(s string) (DocType, error) {
	for _, dt := range SyncOrder {
		if strings.EqualFold(s, string(dt)) {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unknown document type %q (want Filmwork, Person or Genre)", s)
}

func (d DocType) String() string {
	return string(d)
}

// WatermarkField names one persisted high-water mark.
type WatermarkField string

const (
	FieldFilmworkUpdatedAt WatermarkField = "filmwork_updated_at"
	FieldPersonUpdatedAt   WatermarkField = "person_updated_at"
	FieldGenreUpdatedAt    WatermarkField = "genre_updated_at"
)

// OwnField is the watermark field for the type's own source table.
func (d DocType) OwnField() WatermarkField {
	switch d {
	case DocTypeFilmwork:
		return FieldFilmworkUpdatedAt
	case DocTypePerson:
		return FieldPersonUpdatedAt
	case DocTypeGenre:
		return FieldGenreUpdatedAt
	default:
		return ""
	}
}

// TrackedFields lists every watermark field the type persists.
// Film works are invalidated by genre and person changes, so they track all three.
func (d DocType) TrackedFields() []WatermarkField {
	if d == DocTypeFilmwork {
		return []WatermarkField{FieldFilmworkUpdatedAt, FieldGenreUpdatedAt, FieldPersonUpdatedAt}
	}
	if f := d.OwnField(); f != "" {
		return []WatermarkField{f}
	}
	return nil
}

// Table returns the source table a watermark field is read from.
func (f WatermarkField) Table() string {
	switch f {
	case FieldFilmworkUpdatedAt:
		return "film_work"
	case FieldPersonUpdatedAt:
		return "person"
	case FieldGenreUpdatedAt:
		return "genre"
	default:
		return ""
	}
}
