// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package etl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestChunker(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		pages     [][]int
		wantSizes []int
	}{
		{"exact multiple", 3, [][]int{seq(6)}, []int{3, 3}},
		{"trailing partial", 4, [][]int{seq(10)}, []int{4, 4, 2}},
		{"pages smaller than chunk", 5, [][]int{seq(2), seq(2), seq(2)}, []int{5, 1}},
		{"pages larger than chunk", 2, [][]int{seq(5)}, []int{2, 2, 1}},
		{"no rows", 3, nil, nil},
		{"non-positive size uses default", 0, [][]int{seq(150)}, []int{DefaultChunkSize, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sizes []int
			var flat []int
			c := newChunker(tt.size, func(chunk []int) error {
				sizes = append(sizes, len(chunk))
				flat = append(flat, chunk...)
				return nil
			})

			var want []int
			for _, p := range tt.pages {
				require.NoError(t, c.add(p))
				want = append(want, p...)
			}
			require.NoError(t, c.flush())

			assert.Equal(t, tt.wantSizes, sizes)
			assert.Equal(t, want, flat, "row order must be preserved")
		})
	}
}

func TestChunker_StopsOnEmitError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	c := newChunker(2, func([]int) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	err := c.add(seq(10))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestChunker_ChunksDoNotAlias(t *testing.T) {
	var chunks [][]int
	c := newChunker(2, func(chunk []int) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, c.add([]int{1, 2, 3, 4}))
	require.NoError(t, c.flush())
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, chunks)
}
