// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

// Package validation checks source rows with go-playground/validator v10
// before they are turned into search documents.
//
// Rows declare their constraints with struct tags. On pointer columns
// "required" means the column was not NULL; an empty string is accepted:
//
//	type GenreRow struct {
//	    ID   uuid.UUID `db:"id" validate:"required"`
//	    Name *string   `db:"name" validate:"required"`
//	}
//
// ValidateRow returns a *DocumentValidationError naming every failing column
// by its db tag. The error matches ErrValidation:
//
//	if err := validation.ValidateRow(row); errors.Is(err, validation.ErrValidation) {
//	    // the chunk cannot be transformed
//	}
//
// The validator is a thread-safe singleton so struct metadata is parsed once.
package validation
