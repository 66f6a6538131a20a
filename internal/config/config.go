// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds all application configuration.
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Postgres      PostgresConfig      `koanf:"postgres"`
	Elasticsearch ElasticsearchConfig `koanf:"elasticsearch"`
	ETL           ETLConfig           `koanf:"etl"`
	State         StateConfig         `koanf:"state"`
	Backoff       BackoffConfig       `koanf:"backoff"`
	App           AppConfig           `koanf:"app"`
	Server        ServerConfig        `koanf:"server"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// PostgresConfig holds the source database connection settings.
type PostgresConfig struct {
	DSN            string        `koanf:"dsn"`
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	DBName         string        `koanf:"dbname"`
	User           string        `koanf:"user"`
	Password       string        `koanf:"password"`
	Schema         string        `koanf:"schema"`
	SSLMode        string        `koanf:"sslmode"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	MaxConns       int32         `koanf:"max_conns"`
}

// ConnString returns the pgx connection string. DSN wins when set.
func (p PostgresConfig) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.DBName,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}

	q := url.Values{}
	if p.SSLMode != "" {
		q.Set("sslmode", p.SSLMode)
	}
	if p.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(p.ConnectTimeout.Seconds())))
	}
	if p.MaxConns > 0 {
		q.Set("pool_max_conns", strconv.Itoa(int(p.MaxConns)))
	}
	if p.Schema != "" {
		q.Set("search_path", p.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ElasticsearchConfig holds the target cluster and index settings.
type ElasticsearchConfig struct {
	// Addresses takes precedence over Host/Port when non-empty.
	Addresses []string `koanf:"addresses"`
	Host      string   `koanf:"host"`
	Port      int      `koanf:"port"`
	Username  string   `koanf:"username"`
	Password  string   `koanf:"password"`

	FilmWorksIndex string `koanf:"film_works_index"`
	PersonsIndex   string `koanf:"persons_index"`
	GenresIndex    string `koanf:"genres_index"`

	// IndexSchemaDir holds <index><IndexSchemaSuffix> files. Empty means the
	// schemas compiled into the binary are used.
	IndexSchemaDir    string `koanf:"index_schema_dir"`
	IndexSchemaSuffix string `koanf:"index_schema_suffix"`

	RequestTimeout time.Duration `koanf:"request_timeout"`

	// BulkRateLimit caps _bulk requests per second; 0 disables limiting.
	BulkRateLimit float64 `koanf:"bulk_rate_limit"`
}

// NodeAddresses returns the list of node URLs to hand to the client.
func (e ElasticsearchConfig) NodeAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	return []string{fmt.Sprintf("%s:%d", e.Host, e.Port)}
}

// IndexNames returns all target index names in provisioning order.
func (e ElasticsearchConfig) IndexNames() []string {
	return []string{e.GenresIndex, e.PersonsIndex, e.FilmWorksIndex}
}

// ETLConfig tunes the extract/transform/load pipeline.
type ETLConfig struct {
	ChunkSize         int  `koanf:"chunk_size"`
	PageSize          int  `koanf:"page_size"`
	FailOnPartialBulk bool `koanf:"fail_on_partial_bulk"`
}

// State backends.
const (
	StateBackendFile   = "file"
	StateBackendRedis  = "redis"
	StateBackendBadger = "badger"
)

// StateConfig selects and configures the watermark store.
type StateConfig struct {
	Backend       string `koanf:"backend"`
	FilePath      string `koanf:"file_path"`
	RedisHost     string `koanf:"redis_host"`
	RedisPort     int    `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`
	BadgerPath    string `koanf:"badger_path"`
}

// RedisAddr returns host:port for the redis client.
func (s StateConfig) RedisAddr() string {
	return net.JoinHostPort(s.RedisHost, strconv.Itoa(s.RedisPort))
}

// BackoffConfig drives the retry wrapper: delay = min(BorderDelay, StartDelay * 2^attempt).
type BackoffConfig struct {
	StartDelay  time.Duration `koanf:"start_delay"`
	BorderDelay time.Duration `koanf:"border_delay"`
	MaxAttempts int           `koanf:"max_attempts"`
}

// AppConfig holds scheduler loop settings.
type AppConfig struct {
	SleepTimeout time.Duration `koanf:"sleep_timeout"`
	Environment  string        `koanf:"environment"`
}

// IsDev reports whether the development profile is active.
func (a AppConfig) IsDev() bool {
	return isDevEnvironment(a.Environment)
}

// ServerConfig configures the ops HTTP listener (health, readiness, metrics, state).
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig mirrors logging.Config for the loader.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file and the environment.
// See LoadWithKoanf for precedence.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
