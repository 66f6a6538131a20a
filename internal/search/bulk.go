// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/metrics"
	"github.com/tomtom215/cinesync/internal/models"
)

// ErrPartialBulk marks a bulk request in which some documents were rejected.
var ErrPartialBulk = errors.New("bulk request partially failed")

// ItemFailure is one document Elasticsearch refused.
type ItemFailure struct {
	ID     string
	Status int
	Type   string
	Reason string
}

// BulkResult summarizes a bulk upsert.
type BulkResult struct {
	Index   string
	Indexed int
	Failed  []ItemFailure
}

// HasFailures reports whether any document was rejected.
func (r BulkResult) HasFailures() bool { return len(r.Failed) > 0 }

// PartialBulkError carries the rejected items of a bulk request.
type PartialBulkError struct {
	Result BulkResult
}

func (e *PartialBulkError) Error() string {
	return fmt.Sprintf("%s: %d of %d documents rejected by index %s",
		ErrPartialBulk, len(e.Result.Failed), len(e.Result.Failed)+e.Result.Indexed, e.Result.Index)
}

func (e *PartialBulkError) Is(target error) bool { return target == ErrPartialBulk }

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// UpsertBatch indexes docs into the index of dt, keyed by their DocumentID.
// Rejected documents are logged and returned in the result; they become an
// error only when the client was built with FailOnPartialBulk.
func (c *Client) UpsertBatch(ctx context.Context, dt models.DocType, docs []models.Document) (BulkResult, error) {
	index, err := c.IndexName(dt)
	if err != nil {
		return BulkResult{}, err
	}
	result := BulkResult{Index: index}
	if len(docs) == 0 {
		return result, nil
	}

	body, err := encodeBulk(index, docs)
	if err != nil {
		return result, err
	}

	start := time.Now()
	var parsed bulkResponse
	err = c.perform(ctx, "elasticsearch_bulk", true,
		func(ctx context.Context) (*esapi.Response, error) {
			return c.es.Bulk(bytes.NewReader(body),
				c.es.Bulk.WithIndex(index),
				c.es.Bulk.WithContext(ctx),
			)
		},
		func(res *esapi.Response) error {
			if res.IsError() {
				return newResponseError(res)
			}
			parsed = bulkResponse{}
			return json.NewDecoder(res.Body).Decode(&parsed)
		})
	if err != nil {
		metrics.RecordBulk(index, 0, len(docs), time.Since(start))
		return result, fmt.Errorf("bulk upsert into %s: %w", index, err)
	}

	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Error == nil && op.Status < 300 {
				result.Indexed++
				continue
			}
			f := ItemFailure{ID: op.ID, Status: op.Status}
			if op.Error != nil {
				f.Type = op.Error.Type
				f.Reason = op.Error.Reason
			}
			result.Failed = append(result.Failed, f)
		}
	}
	metrics.RecordBulk(index, result.Indexed, len(result.Failed), time.Since(start))

	log := logging.Ctx(ctx)
	if result.HasFailures() {
		ids := make([]string, 0, len(result.Failed))
		for _, f := range result.Failed {
			ids = append(ids, f.ID)
		}
		log.Error().Str("index", index).Int("failed", len(result.Failed)).
			Str("first_error", result.Failed[0].Type+": "+result.Failed[0].Reason).
			Str("ids", strings.Join(ids, ",")).Msg("Documents rejected by Elasticsearch")
		if c.failOnPartial {
			return result, &PartialBulkError{Result: result}
		}
	}
	log.Info().Str("index", index).Int("indexed", result.Indexed).Msg("Data successfully loaded")
	return result, nil
}

func encodeBulk(index string, docs []models.Document) ([]byte, error) {
	type action struct {
		Index struct {
			Index string `json:"_index"`
			ID    string `json:"_id"`
		} `json:"index"`
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		var a action
		a.Index.Index = index
		a.Index.ID = doc.DocumentID()
		if err := enc.Encode(a); err != nil {
			return nil, fmt.Errorf("encode bulk action for %s: %w", a.Index.ID, err)
		}
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode document %s: %w", a.Index.ID, err)
		}
	}
	return buf.Bytes(), nil
}
