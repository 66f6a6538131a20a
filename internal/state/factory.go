// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package state

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinesync/internal/config"
	"github.com/tomtom215/cinesync/internal/logging"
)

// NewStorage opens the backend selected by cfg.Backend.
func NewStorage(ctx context.Context, cfg config.StateConfig) (Storage, error) {
	switch cfg.Backend {
	case config.StateBackendFile, "":
		logging.Info().Str("path", cfg.FilePath).Msg("Using file state storage")
		return NewFileStorage(cfg.FilePath), nil
	case config.StateBackendRedis:
		logging.Info().Str("addr", cfg.RedisAddr()).Str("key", cfg.RedisKey).Msg("Using Redis state storage")
		return NewRedisStorage(ctx, cfg)
	case config.StateBackendBadger:
		logging.Info().Str("path", cfg.BadgerPath).Msg("Using BadgerDB state storage")
		return NewBadgerStorage(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}

// Open opens the configured backend and wraps it in a Store.
func Open(ctx context.Context, cfg config.StateConfig) (*Store, error) {
	storage, err := NewStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(storage), nil
}
