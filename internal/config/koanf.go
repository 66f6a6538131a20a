// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinesync/config.yaml",
	"/etc/cinesync/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
func defaultConfig() *Config {
	return &Config{
		Postgres: PostgresConfig{
			Host:           "127.0.0.1",
			Port:           5432,
			DBName:         "movies_database",
			User:           "app",
			Schema:         "content",
			SSLMode:        "disable",
			ConnectTimeout: 5 * time.Second,
			MaxConns:       4,
		},
		Elasticsearch: ElasticsearchConfig{
			Host:              "http://127.0.0.1",
			Port:              9200,
			FilmWorksIndex:    "movies",
			PersonsIndex:      "persons",
			GenresIndex:       "genres",
			IndexSchemaSuffix: "_index_schema.json",
			RequestTimeout:    30 * time.Second,
			BulkRateLimit:     0, // Unlimited
		},
		ETL: ETLConfig{
			ChunkSize:         100,
			PageSize:          500,
			FailOnPartialBulk: false,
		},
		State: StateConfig{
			Backend:    StateBackendFile,
			FilePath:   "state.json",
			RedisHost:  "127.0.0.1",
			RedisPort:  6379,
			RedisKey:   "cinesync:state",
			BadgerPath: "/data/cinesync-state",
		},
		Backoff: BackoffConfig{
			StartDelay:  100 * time.Millisecond,
			BorderDelay: 10 * time.Second,
			MaxAttempts: 100,
		},
		App: AppConfig{
			SleepTimeout: 60 * time.Second,
			Environment:  "production",
		},
		Server: ServerConfig{
			Enabled:         true,
			Host:            "0.0.0.0",
			Port:            9108,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment profile (ENVIRONMENT=dev)
//  4. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := applyProfile(k); err != nil {
		return nil, fmt.Errorf("failed to apply environment profile: %w", err)
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValueFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processDurationFields(k); err != nil {
		return nil, fmt.Errorf("failed to process duration fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func isDevEnvironment(environment string) bool {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// applyProfile switches logging to debug/console for the development profile.
// Explicit LOG_* variables still win because the env layer loads afterwards.
func applyProfile(k *koanf.Koanf) error {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = k.String("app.environment")
	}
	if !isDevEnvironment(environment) {
		return nil
	}
	if err := k.Set("logging.level", "debug"); err != nil {
		return err
	}
	return k.Set("logging.format", "console")
}

var sliceConfigPaths = []string{
	"elasticsearch.addresses",
}

// processSliceFields converts comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var durationConfigPaths = []string{
	"postgres.connect_timeout",
	"elasticsearch.request_timeout",
	"backoff.start_delay",
	"backoff.border_delay",
	"app.sleep_timeout",
	"server.shutdown_timeout",
}

// processDurationFields accepts bare numbers as seconds (60, "60", "0.1") so
// deployments configured with numeric timeouts keep working.
func processDurationFields(k *koanf.Koanf) error {
	for _, path := range durationConfigPaths {
		var seconds float64
		switch v := k.Get(path).(type) {
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				continue // Not numeric; left for the duration decode hook
			}
			seconds = f
		case int:
			seconds = float64(v)
		case int64:
			seconds = float64(v)
		case float64:
			seconds = v
		default:
			continue
		}
		d := time.Duration(seconds * float64(time.Second))
		if err := k.Set(path, d.String()); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envValueFunc skips variables that are set but empty, then maps the name.
func envValueFunc(key, value string) (string, interface{}) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return envTransformFunc(key), value
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - DB_HOST -> postgres.host
//   - ES_FILM_WORKS_INDEX_NAME -> elasticsearch.film_works_index
//   - ETL_LIMIT_READ_RECORD_DB -> etl.page_size
//   - APP_SLEEP_TIMEOUT -> app.sleep_timeout
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Postgres
		"db_dsn":             "postgres.dsn",
		"db_host":            "postgres.host",
		"db_port":            "postgres.port",
		"db_name":            "postgres.dbname",
		"db_user":            "postgres.user",
		"db_password":        "postgres.password",
		"db_schema":          "postgres.schema",
		"db_sslmode":         "postgres.sslmode",
		"db_connect_timeout": "postgres.connect_timeout",
		"db_max_conns":       "postgres.max_conns",

		// Elasticsearch
		"es_addresses":                "elasticsearch.addresses",
		"es_host":                     "elasticsearch.host",
		"es_port":                     "elasticsearch.port",
		"es_username":                 "elasticsearch.username",
		"es_password":                 "elasticsearch.password",
		"es_film_works_index_name":    "elasticsearch.film_works_index",
		"es_persons_index_name":       "elasticsearch.persons_index",
		"es_genres_index_name":        "elasticsearch.genres_index",
		"es_index_schema_path":        "elasticsearch.index_schema_dir",
		"es_index_schema_file_suffix": "elasticsearch.index_schema_suffix",
		"es_request_timeout":          "elasticsearch.request_timeout",
		"es_bulk_rate_limit":          "elasticsearch.bulk_rate_limit",

		// ETL
		"etl_chunk_size":           "etl.chunk_size",
		"etl_limit_read_record_db": "etl.page_size",
		"etl_fail_on_partial_bulk": "etl.fail_on_partial_bulk",

		// State store
		"state_backend":       "state.backend",
		"etl_state_file_path": "state.file_path",
		"etl_redis_host":      "state.redis_host",
		"etl_redis_port":      "state.redis_port",
		"etl_redis_password":  "state.redis_password",
		"etl_redis_db":        "state.redis_db",
		"etl_redis_key":       "state.redis_key",
		"state_badger_path":   "state.badger_path",

		// Backoff
		"backoff_fetch_delay":  "backoff.start_delay",
		"backoff_border_delay": "backoff.border_delay",
		"backoff_max_attempt":  "backoff.max_attempts",

		// Loop
		"app_sleep_timeout": "app.sleep_timeout",
		"environment":       "app.environment",

		// Ops server
		"http_enabled":          "server.enabled",
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_shutdown_timeout": "server.shutdown_timeout",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
