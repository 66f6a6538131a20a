// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package search

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/models"
)

//go:embed schemas/*.json
var embeddedSchemas embed.FS

const errTypeIndexExists = "resource_already_exists_exception"

// IndexStatus reports what EnsureIndices did with one index.
type IndexStatus struct {
	DocType models.DocType
	Index   string
	Created bool
}

// EnsureIndices creates every missing target index.
func (c *Client) EnsureIndices(ctx context.Context) ([]IndexStatus, error) {
	out := make([]IndexStatus, 0, len(models.SyncOrder))
	for _, dt := range models.SyncOrder {
		index, err := c.IndexName(dt)
		if err != nil {
			return out, err
		}

		exists, err := c.indexExists(ctx, index)
		if err != nil {
			return out, fmt.Errorf("check index %s: %w", index, err)
		}
		if exists {
			logging.Ctx(ctx).Debug().Str("index", index).Msg("Index already exists")
			out = append(out, IndexStatus{DocType: dt, Index: index})
			continue
		}

		schema, source, err := c.loadSchema(dt, index)
		if err != nil {
			return out, err
		}
		created, err := c.createIndex(ctx, index, schema)
		if err != nil {
			return out, fmt.Errorf("create index %s: %w", index, err)
		}
		if created {
			logging.Ctx(ctx).Info().Str("index", index).Str("schema", source).Msg("Index successfully created")
		}
		out = append(out, IndexStatus{DocType: dt, Index: index, Created: created})
	}
	return out, nil
}

func (c *Client) indexExists(ctx context.Context, index string) (bool, error) {
	var exists bool
	err := c.perform(ctx, "elasticsearch_index_exists", false,
		func(ctx context.Context) (*esapi.Response, error) {
			return c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
		},
		func(res *esapi.Response) error {
			switch res.StatusCode {
			case http.StatusOK:
				exists = true
				return nil
			case http.StatusNotFound:
				exists = false
				return nil
			}
			return newResponseError(res)
		})
	return exists, err
}

// createIndex reports false when the index appeared between the existence
// check and the create call.
func (c *Client) createIndex(ctx context.Context, index string, schema []byte) (bool, error) {
	created := false
	err := c.perform(ctx, "elasticsearch_create_index", false,
		func(ctx context.Context) (*esapi.Response, error) {
			return c.es.Indices.Create(index,
				c.es.Indices.Create.WithBody(bytes.NewReader(schema)),
				c.es.Indices.Create.WithContext(ctx),
			)
		},
		func(res *esapi.Response) error {
			if !res.IsError() {
				created = true
				return nil
			}
			re := newResponseError(res)
			if re.Type == errTypeIndexExists {
				return nil
			}
			return re
		})
	return created, err
}

// loadSchema returns the index body for dt and where it came from.
func (c *Client) loadSchema(dt models.DocType, index string) ([]byte, string, error) {
	var (
		data   []byte
		source string
		err    error
	)
	if c.cfg.IndexSchemaDir != "" {
		source = filepath.Join(c.cfg.IndexSchemaDir, index+c.cfg.IndexSchemaSuffix)
		data, err = os.ReadFile(source)
		if errors.Is(err, os.ErrNotExist) {
			return nil, source, fmt.Errorf("index schema for %s not found at %s", index, source)
		}
	} else {
		source = "embedded:" + strings.ToLower(string(dt))
		data, err = embeddedSchemas.ReadFile("schemas/" + strings.ToLower(string(dt)) + ".json")
	}
	if err != nil {
		return nil, source, fmt.Errorf("read index schema %s: %w", source, err)
	}
	if !json.Valid(data) {
		return nil, source, fmt.Errorf("index schema %s is not valid JSON", source)
	}
	return data, source, nil
}
