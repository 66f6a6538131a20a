// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

// DefaultChunkSize is used when no positive chunk size is configured.
const DefaultChunkSize = 100

// chunker regroups the pages coming off the database cursor into chunks of
// a fixed size, keeping row order. Pages and chunks are independent sizes.
type chunker[R any] struct {
	size int
	buf  []R
	emit func([]R) error
}

func newChunker[R any](size int, emit func([]R) error) *chunker[R] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &chunker[R]{size: size, buf: make([]R, 0, size), emit: emit}
}

// add buffers rows and emits every chunk that fills up.
func (c *chunker[R]) add(rows []R) error {
	for len(rows) > 0 {
		n := c.size - len(c.buf)
		if n > len(rows) {
			n = len(rows)
		}
		c.buf = append(c.buf, rows[:n]...)
		rows = rows[n:]

		if len(c.buf) == c.size {
			if err := c.send(); err != nil {
				return err
			}
		}
	}
	return nil
}

// flush emits the final partial chunk, if any.
func (c *chunker[R]) flush() error {
	if len(c.buf) == 0 {
		return nil
	}
	return c.send()
}

func (c *chunker[R]) send() error {
	chunk := c.buf
	c.buf = make([]R, 0, c.size)
	return c.emit(chunk)
}
