// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package state

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tomtom215/cinesync/internal/config"
)

// RedisStorage keeps the state mapping in one Redis hash.
type RedisStorage struct {
	client *goredis.Client
	key    string
}

// NewRedisStorage connects to Redis and verifies the connection with a ping.
func NewRedisStorage(ctx context.Context, cfg config.StateConfig) (*RedisStorage, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr(),
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr(), err)
	}

	return NewRedisStorageFromClient(client, cfg.RedisKey), nil
}

// NewRedisStorageFromClient wraps an existing client.
func NewRedisStorageFromClient(client *goredis.Client, key string) *RedisStorage {
	return &RedisStorage{client: client, key: key}
}

// Retrieve returns all fields of the hash. A missing key is an empty mapping.
func (r *RedisStorage) Retrieve(ctx context.Context) (map[string]string, error) {
	out, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", r.key, err)
	}
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

// Save replaces the hash contents in one MULTI/EXEC transaction.
func (r *RedisStorage) Save(ctx context.Context, state map[string]string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(state) > 0 {
			fields := make(map[string]interface{}, len(state))
			for k, v := range state {
				fields[k] = v
			}
			pipe.HSet(ctx, r.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", r.key, err)
	}
	return nil
}

// Close closes the client.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
