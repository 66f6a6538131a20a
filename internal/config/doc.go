// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

/*
Package config provides centralized configuration management for CineSync.

Configuration is loaded once in main and passed explicitly into every
component constructor. There is no package-level configuration singleton.

# Configuration Sources

Sources are layered with Koanf v2, later layers overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/cinesync/config.yaml)
  - Environment profile (ENVIRONMENT=dev switches logging to debug/console)
  - Environment variables

# Environment Variables

Postgres (PostgresConfig):
  - DB_DSN: full connection string, overrides the discrete fields
  - DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD
  - DB_SCHEMA: schema holding the catalog tables (default: content)
  - DB_SSLMODE, DB_CONNECT_TIMEOUT, DB_MAX_CONNS

Elasticsearch (ElasticsearchConfig):
  - ES_ADDRESSES: comma-separated node URLs, overrides ES_HOST/ES_PORT
  - ES_HOST, ES_PORT, ES_USERNAME, ES_PASSWORD
  - ES_FILM_WORKS_INDEX_NAME, ES_PERSONS_INDEX_NAME, ES_GENRES_INDEX_NAME
  - ES_INDEX_SCHEMA_PATH, ES_INDEX_SCHEMA_FILE_SUFFIX
  - ES_REQUEST_TIMEOUT, ES_BULK_RATE_LIMIT

ETL (ETLConfig, StateConfig):
  - ETL_CHUNK_SIZE: documents per transform+load unit (default: 100)
  - ETL_LIMIT_READ_RECORD_DB: rows per cursor FETCH (default: 500)
  - ETL_FAIL_ON_PARTIAL_BULK: treat rejected bulk items as cycle failure
  - STATE_BACKEND: file, redis or badger (default: file)
  - ETL_STATE_FILE_PATH, ETL_REDIS_HOST, ETL_REDIS_PORT, ETL_REDIS_DB, STATE_BADGER_PATH

Backoff and loop (BackoffConfig, AppConfig):
  - BACKOFF_FETCH_DELAY, BACKOFF_BORDER_DELAY, BACKOFF_MAX_ATTEMPT
  - APP_SLEEP_TIMEOUT: pause between rounds

Duration variables accept Go duration strings ("1m30s") or plain numbers,
which are read as seconds ("60", "0.1").
*/
package config
