// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	roundIDKey contextKey = "round_id"
	docTypeKey contextKey = "doc_type"
)

// GenerateRoundID returns a short identifier for one scheduler round.
// The first 8 characters of a UUID keep log lines readable.
func GenerateRoundID() string {
	return uuid.New().String()[:8]
}

// ContextWithRoundID returns a context carrying the given round ID.
func ContextWithRoundID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, roundIDKey, id)
}

// ContextWithNewRoundID returns a context carrying a freshly generated round ID.
func ContextWithNewRoundID(ctx context.Context) context.Context {
	return ContextWithRoundID(ctx, GenerateRoundID())
}

// RoundIDFromContext returns the round ID, or "" when none is set.
func RoundIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(roundIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithDocType returns a context tagged with the document type being synced.
func ContextWithDocType(ctx context.Context, docType string) context.Context {
	return context.WithValue(ctx, docTypeKey, docType)
}

// DocTypeFromContext returns the document type, or "" when none is set.
func DocTypeFromContext(ctx context.Context) string {
	if dt, ok := ctx.Value(docTypeKey).(string); ok {
		return dt
	}
	return ""
}

// Ctx returns the global logger enriched with round_id and doc_type from ctx.
//
//	logging.Ctx(ctx).Info().Msg("Begin ETL")
//	// {"level":"info","round_id":"1a2b3c4d","doc_type":"Filmwork","message":"Begin ETL"}
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()
	if id := RoundIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("round_id", id)
	}
	if dt := DocTypeFromContext(ctx); dt != "" {
		logCtx = logCtx.Str("doc_type", dt)
	}
	l := logCtx.Logger()
	return &l
}
