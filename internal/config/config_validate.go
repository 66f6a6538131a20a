// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := c.validatePostgres(); err != nil {
		return err
	}
	if err := c.validateElasticsearch(); err != nil {
		return err
	}
	if err := c.validateETL(); err != nil {
		return err
	}
	if err := c.validateState(); err != nil {
		return err
	}
	if err := c.validateBackoff(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePostgres() error {
	if c.Postgres.DSN != "" {
		return nil
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("DB_HOST is required when DB_DSN is not set")
	}
	if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Postgres.Port)
	}
	if c.Postgres.DBName == "" {
		return fmt.Errorf("DB_NAME is required when DB_DSN is not set")
	}
	if c.Postgres.Schema == "" {
		return fmt.Errorf("DB_SCHEMA must not be empty")
	}
	return nil
}

func (c *Config) validateElasticsearch() error {
	es := c.Elasticsearch
	for _, addr := range es.NodeAddresses() {
		if err := validateHTTPURL(addr, "ES_ADDRESSES"); err != nil {
			return err
		}
	}

	names := map[string]string{
		"ES_FILM_WORKS_INDEX_NAME": es.FilmWorksIndex,
		"ES_PERSONS_INDEX_NAME":    es.PersonsIndex,
		"ES_GENRES_INDEX_NAME":     es.GenresIndex,
	}
	seen := make(map[string]string, len(names))
	for field, name := range names {
		if name == "" {
			return fmt.Errorf("%s must not be empty", field)
		}
		if name != strings.ToLower(name) {
			return fmt.Errorf("%s must be lowercase, got %q", field, name)
		}
		if other, dup := seen[name]; dup {
			return fmt.Errorf("%s and %s both point at index %q", other, field, name)
		}
		seen[name] = field
	}

	if es.BulkRateLimit < 0 {
		return fmt.Errorf("ES_BULK_RATE_LIMIT must be >= 0, got %v", es.BulkRateLimit)
	}
	return nil
}

func (c *Config) validateETL() error {
	if c.ETL.ChunkSize < 1 {
		return fmt.Errorf("ETL_CHUNK_SIZE must be at least 1, got %d", c.ETL.ChunkSize)
	}
	if c.ETL.PageSize < 1 {
		return fmt.Errorf("ETL_LIMIT_READ_RECORD_DB must be at least 1, got %d", c.ETL.PageSize)
	}
	if c.App.SleepTimeout <= 0 {
		return fmt.Errorf("APP_SLEEP_TIMEOUT must be positive, got %v", c.App.SleepTimeout)
	}
	return nil
}

func (c *Config) validateState() error {
	switch c.State.Backend {
	case StateBackendFile:
		if c.State.FilePath == "" {
			return fmt.Errorf("ETL_STATE_FILE_PATH is required for the file state backend")
		}
	case StateBackendRedis:
		if c.State.RedisHost == "" {
			return fmt.Errorf("ETL_REDIS_HOST is required for the redis state backend")
		}
		if c.State.RedisKey == "" {
			return fmt.Errorf("ETL_REDIS_KEY must not be empty")
		}
	case StateBackendBadger:
		if c.State.BadgerPath == "" {
			return fmt.Errorf("STATE_BADGER_PATH is required for the badger state backend")
		}
	default:
		return fmt.Errorf("STATE_BACKEND must be one of file, redis, badger; got %q", c.State.Backend)
	}
	return nil
}

func (c *Config) validateBackoff() error {
	b := c.Backoff
	if b.StartDelay <= 0 {
		return fmt.Errorf("BACKOFF_FETCH_DELAY must be positive, got %v", b.StartDelay)
	}
	if b.BorderDelay < b.StartDelay {
		return fmt.Errorf("BACKOFF_BORDER_DELAY (%v) must not be less than BACKOFF_FETCH_DELAY (%v)", b.BorderDelay, b.StartDelay)
	}
	if b.MaxAttempts < 1 {
		return fmt.Errorf("BACKOFF_MAX_ATTEMPT must be at least 1, got %d", b.MaxAttempts)
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
