// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/metrics"
	"github.com/tomtom215/cinesync/internal/models"
	"github.com/tomtom215/cinesync/internal/search"
)

// StateStore persists watermarks. It is satisfied by *state.Store.
type StateStore interface {
	LoadWatermark(ctx context.Context, dt models.DocType) (models.Watermark, error)
	SaveWatermark(ctx context.Context, w models.Watermark) error
}

// Loader writes documents to the search index. It is satisfied by
// *search.Client.
type Loader interface {
	UpsertBatch(ctx context.Context, dt models.DocType, docs []models.Document) (search.BulkResult, error)
}

// Cycle is one document type's sync cycle.
type Cycle interface {
	DocType() models.DocType
	Run(ctx context.Context, ex Extractor, loader Loader) (CycleResult, error)
}

// CycleResult describes a finished cycle.
type CycleResult struct {
	DocType   models.DocType
	Outcome   string
	Bulk      bool
	Rows      int
	Chunks    int
	Loaded    int
	Rejected  int
	Watermark models.Watermark
	Duration  time.Duration
}

// Options tune an orchestrator.
type Options struct {
	ChunkSize int
	// Now replaces the wall clock in tests.
	Now func() time.Time
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

type streamFunc[R models.Row] func(ex Extractor, ctx context.Context, ids []uuid.UUID, fn func([]R) error) error

// Orchestrator runs the cycle of one document type.
type Orchestrator[R models.Row] struct {
	docType     models.DocType
	resolver    ChangeResolver
	transformer DocumentTransformer[R]
	stream      streamFunc[R]
	store       StateStore
	chunkSize   int
	now         func() time.Time

	stage atomic.Value
}

// NewFilmworkSync builds the movies cycle.
func NewFilmworkSync(store StateStore, opts Options) *Orchestrator[models.FilmworkRow] {
	return newOrchestrator[models.FilmworkRow](models.DocTypeFilmwork, FilmworkResolver{},
		FilmworkTransformer{Now: opts.clock()}, Extractor.StreamFilmworks, store, opts)
}

// NewPersonSync builds the persons cycle.
func NewPersonSync(store StateStore, opts Options) *Orchestrator[models.PersonRow] {
	return newOrchestrator[models.PersonRow](models.DocTypePerson, PersonResolver{},
		PersonTransformer{}, Extractor.StreamPersons, store, opts)
}

// NewGenreSync builds the genres cycle.
func NewGenreSync(store StateStore, opts Options) *Orchestrator[models.GenreRow] {
	return newOrchestrator[models.GenreRow](models.DocTypeGenre, GenreResolver{},
		GenreTransformer{}, Extractor.StreamGenres, store, opts)
}

// NewCycles returns the cycles of every document type in round order.
func NewCycles(store StateStore, opts Options) []Cycle {
	cycles := make([]Cycle, 0, len(models.SyncOrder))
	for _, dt := range models.SyncOrder {
		switch dt {
		case models.DocTypeFilmwork:
			cycles = append(cycles, NewFilmworkSync(store, opts))
		case models.DocTypeGenre:
			cycles = append(cycles, NewGenreSync(store, opts))
		case models.DocTypePerson:
			cycles = append(cycles, NewPersonSync(store, opts))
		}
	}
	return cycles
}

func newOrchestrator[R models.Row](
	dt models.DocType,
	resolver ChangeResolver,
	transformer DocumentTransformer[R],
	stream streamFunc[R],
	store StateStore,
	opts Options,
) *Orchestrator[R] {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	o := &Orchestrator[R]{
		docType:     dt,
		resolver:    resolver,
		transformer: transformer,
		stream:      stream,
		store:       store,
		chunkSize:   chunkSize,
		now:         opts.clock(),
	}
	o.stage.Store(StageIdle)
	return o
}

// DocType implements Cycle.
func (o *Orchestrator[R]) DocType() models.DocType { return o.docType }

// Stage returns the state the cycle is currently in.
func (o *Orchestrator[R]) Stage() Stage { return o.stage.Load().(Stage) }

func (o *Orchestrator[R]) enter(ctx context.Context, s Stage) {
	if prev := o.stage.Swap(s); prev != s {
		logging.Ctx(ctx).Debug().Str("from", string(prev.(Stage))).Str("to", string(s)).Msg("Cycle stage")
	}
}

// Run executes one cycle: resolve changes, stream the rows in chunks through
// the transformer and the loader, then commit the new watermark. The stored
// watermark is only written when every chunk was loaded.
func (o *Orchestrator[R]) Run(ctx context.Context, ex Extractor, loader Loader) (CycleResult, error) {
	ctx = logging.ContextWithDocType(ctx, string(o.docType))
	log := logging.Ctx(ctx)
	start := time.Now()
	res := CycleResult{DocType: o.docType}

	log.Info().Msg("Begin ETL")
	o.enter(ctx, StageExtracting)

	w, err := o.store.LoadWatermark(ctx, o.docType)
	if err != nil {
		return o.fail(ctx, res, start, &ETLError{DocType: o.docType, Stage: StageExtracting, Err: err})
	}
	changes, err := o.resolver.Resolve(ctx, ex, w)
	if err != nil {
		return o.fail(ctx, res, start, &ETLError{DocType: o.docType, Stage: StageExtracting, Err: err})
	}
	res.Bulk = changes.Bulk

	if changes.Empty() {
		o.enter(ctx, StageNoChanges)
		log.Info().Msg("No updated data")
		res.Outcome = metrics.OutcomeNoChanges
		res.Watermark = w
		res.Duration = time.Since(start)
		metrics.RecordCycle(string(o.docType), res.Outcome, res.Duration)
		o.enter(ctx, StageIdle)
		return res, nil
	}

	if len(changes.IDs) > 0 {
		if err := o.load(ctx, ex, loader, changes.IDs, &res); err != nil {
			return o.fail(ctx, res, start, err)
		}
	}

	o.enter(ctx, StageCommitting)
	if err := ctx.Err(); err != nil {
		return o.fail(ctx, res, start, &ETLError{DocType: o.docType, Stage: StageCommitting, Err: err})
	}
	next := changes.Watermark
	next.DocType = o.docType
	next.FlagSuccess = true
	next.ESUpdatedAt = o.now().UTC()
	if err := o.store.SaveWatermark(ctx, next); err != nil {
		return o.fail(ctx, res, start, &ETLError{DocType: o.docType, Stage: StageCommitting, Err: err})
	}

	res.Outcome = metrics.OutcomeSuccess
	res.Watermark = next
	res.Duration = time.Since(start)
	metrics.RecordCycle(string(o.docType), res.Outcome, res.Duration)
	o.enter(ctx, StageIdle)

	log.Info().
		Bool("bulk", res.Bulk).
		Int("rows", res.Rows).
		Int("chunks", res.Chunks).
		Int("loaded", res.Loaded).
		Int("rejected", res.Rejected).
		Dur("duration", res.Duration).
		Msg("ETL successfully done")
	return res, nil
}

// load streams the rows for ids and pushes them through transform and load
// chunk by chunk.
func (o *Orchestrator[R]) load(ctx context.Context, ex Extractor, loader Loader, ids []uuid.UUID, res *CycleResult) *ETLError {
	o.enter(ctx, StageChunking)
	ch := newChunker(o.chunkSize, func(rows []R) error {
		return o.processChunk(ctx, loader, rows, res)
	})

	err := o.stream(ex, ctx, ids, func(page []R) error {
		res.Rows += len(page)
		metrics.RowsExtracted.WithLabelValues(string(o.docType)).Add(float64(len(page)))
		return ch.add(page)
	})
	if err == nil {
		err = ch.flush()
	}
	if err == nil {
		return nil
	}

	var etlErr *ETLError
	if errors.As(err, &etlErr) {
		return etlErr
	}
	return &ETLError{DocType: o.docType, Stage: StageExtracting, Err: err}
}

func (o *Orchestrator[R]) processChunk(ctx context.Context, loader Loader, rows []R, res *CycleResult) error {
	log := logging.Ctx(ctx)
	o.enter(ctx, StageTransforming)
	log.Debug().Int("rows", len(rows)).Msg("Ready to process chunk")

	debug := logging.IsDebugEnabled()
	docs := make([]models.Document, 0, len(rows))
	for i, row := range rows {
		if debug {
			log.Debug().Int("record", i+1).Interface("row", row).Msg("Record for load to ES")
		}
		doc, err := o.transformer.Transform(row)
		if err != nil {
			return &ETLError{DocType: o.docType, Stage: StageTransforming, Err: err}
		}
		docs = append(docs, doc)
	}
	metrics.ChunkSize.WithLabelValues(string(o.docType)).Observe(float64(len(docs)))

	o.enter(ctx, StageLoading)
	br, err := loader.UpsertBatch(ctx, o.docType, docs)
	res.Loaded += br.Indexed
	res.Rejected += len(br.Failed)
	if err != nil {
		return &ETLError{DocType: o.docType, Stage: StageLoading, Err: err}
	}
	res.Chunks++
	o.enter(ctx, StageChunking)
	return nil
}

func (o *Orchestrator[R]) fail(ctx context.Context, res CycleResult, start time.Time, err *ETLError) (CycleResult, error) {
	o.enter(ctx, StageFailed)
	res.Outcome = metrics.OutcomeFailed
	res.Duration = time.Since(start)
	metrics.RecordCycle(string(o.docType), res.Outcome, res.Duration)
	logging.Ctx(ctx).Error().Err(err.Err).Str("stage", string(err.Stage)).Msg("ETL failed")
	o.enter(ctx, StageIdle)
	return res, err
}
