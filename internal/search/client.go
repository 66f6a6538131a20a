// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinesync/internal/config"
	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/retry"
)

// Options configures a Client beyond the connection settings.
type Options struct {
	// FailOnPartialBulk turns rejected bulk items into an error.
	FailOnPartialBulk bool
	// Retry wraps every request.
	Retry retry.Policy
	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
	// Breaker is shared with other clients. Nil gives the client its own.
	Breaker *CircuitBreaker

	breaker breakerSettings
}

// Client indexes documents and manages the target indices.
type Client struct {
	es        *elasticsearch.Client
	transport http.RoundTripper
	cfg       config.ElasticsearchConfig
	indices   map[models.DocType]string

	breaker       *CircuitBreaker
	limiter       *rate.Limiter
	retry         retry.Policy
	failOnPartial bool
}

// New builds a Client without contacting the cluster.
func New(cfg config.ElasticsearchConfig, opts Options) (*Client, error) {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.NodeAddresses(),
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	limit := rate.Inf
	if cfg.BulkRateLimit > 0 {
		limit = rate.Limit(cfg.BulkRateLimit)
	}

	breaker := opts.Breaker
	if breaker == nil {
		bs := opts.breaker
		if bs == (breakerSettings{}) {
			bs = defaultBreakerSettings
		}
		breaker = newCircuitBreaker(breakerName, bs)
	}

	return &Client{
		es:        es,
		transport: transport,
		cfg:       cfg,
		indices: map[models.DocType]string{
			models.DocTypeFilmwork: cfg.FilmWorksIndex,
			models.DocTypePerson:   cfg.PersonsIndex,
			models.DocTypeGenre:    cfg.GenresIndex,
		},
		breaker:       breaker,
		limiter:       rate.NewLimiter(limit, 1),
		retry:         opts.Retry,
		failOnPartial: opts.FailOnPartialBulk,
	}, nil
}

// Connect builds a Client and waits, within the retry policy, until the
// cluster answers.
func Connect(ctx context.Context, cfg config.ElasticsearchConfig, opts Options) (*Client, error) {
	c, err := New(cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("connect to elasticsearch: %w", err)
	}
	return c, nil
}

// Ping checks that the cluster responds.
func (c *Client) Ping(ctx context.Context) error {
	var info struct {
		ClusterName string `json:"cluster_name"`
		Version     struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	err := c.perform(ctx, "elasticsearch_ping", false,
		func(ctx context.Context) (*esapi.Response, error) {
			return c.es.Info(c.es.Info.WithContext(ctx))
		},
		func(res *esapi.Response) error {
			if res.IsError() {
				return newResponseError(res)
			}
			return json.NewDecoder(res.Body).Decode(&info)
		})
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().Str("cluster", info.ClusterName).Str("version", info.Version.Number).
		Msg("Connected to Elasticsearch")
	return nil
}

// IndexName returns the index documents of dt are written to.
func (c *Client) IndexName(dt models.DocType) (string, error) {
	name, ok := c.indices[dt]
	if !ok || name == "" {
		return "", fmt.Errorf("no index configured for document type %q", dt)
	}
	return name, nil
}

// Close releases idle HTTP connections.
func (c *Client) Close() {
	if t, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
}

// perform sends one request through the retry policy, the optional rate
// limiter and the circuit breaker. handle receives every response, error
// statuses included, and owns the decision of whether it is a failure.
func (c *Client) perform(
	ctx context.Context,
	operation string,
	limited bool,
	send func(ctx context.Context) (*esapi.Response, error),
	handle func(res *esapi.Response) error,
) error {
	return c.retry.Do(ctx, operation, func(ctx context.Context) error {
		if limited {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Permanent(err)
			}
		}
		return c.breaker.execute(func() error {
			reqCtx, cancel := c.requestContext(ctx)
			defer cancel()

			res, err := send(reqCtx)
			if err != nil {
				return err
			}
			defer res.Body.Close()
			return handle(res)
		})
	})
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

// ResponseError is an Elasticsearch error response.
type ResponseError struct {
	Status int
	Type   string
	Reason string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("elasticsearch: status %d: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("elasticsearch: status %d: %s: %s", e.Status, e.Type, e.Reason)
}

// StatusCode lets retry.IsRetryable classify the response.
func (e *ResponseError) StatusCode() int { return e.Status }

func newResponseError(res *esapi.Response) *ResponseError {
	re := &ResponseError{Status: res.StatusCode}

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil || len(body) == 0 {
		re.Reason = http.StatusText(res.StatusCode)
		return re
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var detail struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(envelope.Error, &detail); err == nil && detail.Type != "" {
			re.Type = detail.Type
			re.Reason = detail.Reason
			return re
		}
		var msg string
		if err := json.Unmarshal(envelope.Error, &msg); err == nil {
			re.Reason = msg
			return re
		}
	}
	re.Reason = strings.TrimSpace(string(body))
	return re
}
