// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package state

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for BadgerDB storage
const stateKeyPrefix = "state:"

// BadgerStorage keeps each state key as one BadgerDB entry.
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage opens (or creates) a BadgerDB at path.
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs
	return openBadger(opts)
}

// NewInMemoryBadgerStorage opens a non-persistent BadgerDB.
func NewInMemoryBadgerStorage() (*BadgerStorage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerStorage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for state: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

// Retrieve returns every state entry.
func (b *BadgerStorage) Retrieve(_ context.Context) (map[string]string, error) {
	out := map[string]string{}
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(stateKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(stateKeyPrefix):])
			if err := item.Value(func(val []byte) error {
				out[key] = string(val)
				return nil
			}); err != nil {
				return fmt.Errorf("read state %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces all state entries in a single transaction.
func (b *BadgerStorage) Save(_ context.Context, state map[string]string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(stateKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if _, keep := state[string(key[len(stateKeyPrefix):])]; !keep {
				stale = append(stale, key)
			}
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete state %s: %w", key, err)
			}
		}
		for k, v := range state {
			if err := txn.Set([]byte(stateKeyPrefix+k), []byte(v)); err != nil {
				return fmt.Errorf("set state %s: %w", k, err)
			}
		}
		return nil
	})
}

// Close closes the database.
func (b *BadgerStorage) Close() error {
	return b.db.Close()
}
