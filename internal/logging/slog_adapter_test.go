// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newBufferedSlog(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })
	SetLogger(NewTestLogger(&buf))
	return NewSlogLogger(), &buf
}

func TestSlogHandler_Levels(t *testing.T) {
	logger, buf := newBufferedSlog(t)

	logger.Warn("service restarting", "service", "scheduler")
	logger.Error("service failed", "err", errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("expected warn level, got: %s", out)
	}
	if !strings.Contains(out, `"level":"error"`) {
		t.Errorf("expected error level, got: %s", out)
	}
	if !strings.Contains(out, `"err":"boom"`) {
		t.Errorf("expected error attribute, got: %s", out)
	}
}

func TestSlogHandler_AttrKinds(t *testing.T) {
	logger, buf := newBufferedSlog(t)

	logger.Info("attrs",
		slog.String("s", "v"),
		slog.Int("i", 7),
		slog.Bool("b", true),
		slog.Duration("d", time.Second),
		slog.Float64("f", 1.5),
	)

	out := buf.String()
	for _, want := range []string{`"s":"v"`, `"i":7`, `"b":true`, `"f":1.5`, `"d":`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got: %s", want, out)
		}
	}
}

func TestSlogHandler_GroupsAndWithAttrs(t *testing.T) {
	logger, buf := newBufferedSlog(t)

	logger.With("supervisor", "cinesync").WithGroup("event").Info("backoff", "failures", 3)

	out := buf.String()
	if !strings.Contains(out, `"supervisor":"cinesync"`) {
		t.Errorf("expected WithAttrs field, got: %s", out)
	}
	if !strings.Contains(out, `"event.failures":3`) {
		t.Errorf("expected grouped key, got: %s", out)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })
	Init(Config{Level: "error", Output: &bytes.Buffer{}})

	h := NewSlogHandler()
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at error level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled")
	}
}
