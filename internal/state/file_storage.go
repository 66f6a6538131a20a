// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/google/renameio/v2"

	"github.com/tomtom215/cinesync/internal/logging"
)

// FileStorage keeps the state mapping in a single JSON file. Every Save
// rewrites the whole file with renameio, so a reader sees either the
// previous or the new mapping.
type FileStorage struct {
	path string
}

// NewFileStorage creates a FileStorage at path. The file is created on the
// first Save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the state file location.
func (f *FileStorage) Path() string {
	return f.path
}

// Retrieve reads the mapping. A missing, empty or unreadable file yields an
// empty mapping so the next cycle starts in bulk mode.
func (f *FileStorage) Retrieve(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Ctx(ctx).Debug().Str("path", f.path).Msg("State file does not exist yet")
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		logging.Ctx(ctx).Info().Str("path", f.path).Msg("State file is empty")
		return map[string]string{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("path", f.path).
			Msg("State file is not a JSON object, starting from empty state")
		return map[string]string{}, nil
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		// Values written as nested objects are kept in their JSON form.
		out[k] = string(bytes.TrimSpace(v))
	}
	return out, nil
}

// Save atomically replaces the file with state.
func (f *FileStorage) Save(_ context.Context, state map[string]string) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := renameio.WriteFile(f.path, data, 0o640); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Close is a no-op for files.
func (f *FileStorage) Close() error { return nil }
