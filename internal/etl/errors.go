// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

import (
	"fmt"

	"github.com/tomtom215/cinesync/internal/models"
)

// Stage is a state of the cycle state machine.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageExtracting   Stage = "extracting"
	StageNoChanges    Stage = "no_changes"
	StageChunking     Stage = "chunking"
	StageTransforming Stage = "transforming"
	StageLoading      Stage = "loading"
	StageCommitting   Stage = "committing"
	StageFailed       Stage = "failed"
)

// ETLError is the single error a failed cycle returns. Stage is where the
// cycle was when Err occurred.
type ETLError struct {
	DocType models.DocType
	Stage   Stage
	Err     error
}

func (e *ETLError) Error() string {
	return fmt.Sprintf("etl %s failed while %s: %v", e.DocType, e.Stage, e.Err)
}

func (e *ETLError) Unwrap() error { return e.Err }
