// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/cinesync/internal/logging"
	"github.com/tomtom215/cinesync/internal/metrics"
	"github.com/tomtom215/cinesync/internal/models"
)

// DefaultSleepTimeout is the pause between rounds when none is configured.
const DefaultSleepTimeout = time.Minute

// CycleStatus is the outcome of one cycle of the last round.
type CycleStatus struct {
	DocType  models.DocType `json:"doc_type"`
	Outcome  string         `json:"outcome"`
	Bulk     bool           `json:"bulk"`
	Rows     int            `json:"rows"`
	Loaded   int            `json:"loaded"`
	Rejected int            `json:"rejected"`
	Duration string         `json:"duration"`
	Error    string         `json:"error,omitempty"`
}

// Status describes the scheduler and its last finished round.
type Status struct {
	Running    bool          `json:"running"`
	Rounds     uint64        `json:"rounds"`
	RoundID    string        `json:"round_id,omitempty"`
	StartedAt  time.Time     `json:"started_at,omitempty"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
	Error      string        `json:"error,omitempty"`
	Cycles     []CycleStatus `json:"cycles,omitempty"`
}

// Ready reports whether the last round reached both stores and every cycle
// in it succeeded or found nothing to do.
func (s Status) Ready() bool {
	if s.Rounds == 0 || s.Error != "" {
		return false
	}
	for _, c := range s.Cycles {
		if c.Error != "" {
			return false
		}
	}
	return true
}

// RoundResult collects the cycles of one round.
type RoundResult struct {
	RoundID string
	Cycles  []CycleResult
}

// Scheduler runs rounds of cycles until stopped.
type Scheduler struct {
	cycles []Cycle
	open   Opener
	sleep  time.Duration

	mu       sync.RWMutex
	running  bool
	status   Status
	stopChan chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	roundMu sync.Mutex
}

// NewScheduler builds a scheduler that runs cycles in the given order and
// pauses sleep between rounds.
func NewScheduler(cycles []Cycle, open Opener, sleep time.Duration) *Scheduler {
	if sleep <= 0 {
		sleep = DefaultSleepTimeout
	}
	return &Scheduler{cycles: cycles, open: open, sleep: sleep}
}

// Start launches the round loop in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	logging.Info().Dur("sleep_timeout", s.sleep).Int("cycles", len(s.cycles)).Msg("Starting ETL scheduler")

	loopCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.status.Running = true
	s.stopChan = make(chan struct{})
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(loopCtx)
	return nil
}

// Stop cancels the round in progress, if any, and waits for the loop to exit.
// The interrupted cycle does not commit its watermark.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.running = false
	s.status.Running = false
	close(s.stopChan)
	s.cancel()
	s.mu.Unlock()

	logging.Info().Msg("Stopping ETL scheduler...")
	s.wg.Wait()
	logging.Info().Msg("ETL scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		if _, err := s.RunRound(ctx); err != nil && ctx.Err() == nil {
			logging.Error().Err(err).Msg("ETL round failed")
		}

		logging.Debug().Dur("sleep", s.sleep).Msg("Waiting for next round")
		timer := time.NewTimer(s.sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunRound opens connections, runs every cycle once and closes the
// connections. A failed cycle does not stop the ones after it; the returned
// error joins every cycle error.
func (s *Scheduler) RunRound(ctx context.Context) (RoundResult, error) {
	s.roundMu.Lock()
	defer s.roundMu.Unlock()

	ctx = logging.ContextWithNewRoundID(ctx)
	log := logging.Ctx(ctx)
	result := RoundResult{RoundID: logging.RoundIDFromContext(ctx)}
	status := Status{RoundID: result.RoundID, StartedAt: time.Now().UTC()}
	metrics.RoundsTotal.Inc()

	res, err := s.open(ctx)
	if err != nil {
		err = fmt.Errorf("open connections: %w", err)
		status.Error = err.Error()
		s.finishRound(status)
		return result, err
	}
	defer func() {
		log.Info().Msg("Close connections")
		res.Close()
	}()

	var errs []error
	for _, c := range s.cycles {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		r, err := c.Run(ctx, res.Extractor, res.Loader)
		result.Cycles = append(result.Cycles, r)

		cs := CycleStatus{
			DocType:  c.DocType(),
			Outcome:  r.Outcome,
			Bulk:     r.Bulk,
			Rows:     r.Rows,
			Loaded:   r.Loaded,
			Rejected: r.Rejected,
			Duration: r.Duration.String(),
		}
		if err != nil {
			cs.Error = err.Error()
			errs = append(errs, err)
		}
		status.Cycles = append(status.Cycles, cs)
	}

	s.finishRound(status)
	return result, errors.Join(errs...)
}

func (s *Scheduler) finishRound(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.FinishedAt = time.Now().UTC()
	st.Running = s.running
	st.Rounds = s.status.Rounds + 1
	s.status = st
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Cycles = append([]CycleStatus(nil), s.status.Cycles...)
	return st
}
