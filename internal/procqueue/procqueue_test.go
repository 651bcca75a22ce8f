// Copyright 2026 The Taliro Authors
// This file is part of the taliro node.
//
// The taliro node is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The taliro node is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the taliro node. If not, see <http://www.gnu.org/licenses/>.

package procqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/chainhash"
)

func nvAt(h chainhash.Height) block.NonValidated {
	return block.NonValidated{Data: block.Data{Height: h}}
}

func TestNextReadyBlockOnlyReturnsExpectedHeight(t *testing.T) {
	q := New(0)
	q.PushBlock(nvAt(1))
	_, ok := q.NextReadyBlock()
	assert.False(t, ok, "height 1 buffered ahead of nextExpected 0 must not be ready")
}

func TestNextReadyBlockReturnsExpectedHeight(t *testing.T) {
	q := New(0)
	q.PushBlock(nvAt(0))
	nv, ok := q.NextReadyBlock()
	require.True(t, ok)
	assert.Equal(t, chainhash.Height(0), nv.Data.Height)
}

func TestNextReadyBlockSingleFlightsSameHeight(t *testing.T) {
	q := New(0)
	q.PushBlock(nvAt(0))
	_, ok := q.NextReadyBlock()
	require.True(t, ok)

	_, ok = q.NextReadyBlock()
	assert.False(t, ok, "a height already marked in-flight must not be handed out twice")
}

func TestMarkBlockProcessedAdvancesCursor(t *testing.T) {
	q := New(0)
	q.PushBlock(nvAt(0))
	q.NextReadyBlock()
	q.MarkBlockProcessed(0)

	assert.Equal(t, chainhash.Height(1), q.NextExpected())
}

func TestMarkBlockFailedKeepsBlockBufferedForRetry(t *testing.T) {
	q := New(0)
	q.PushBlock(nvAt(0))
	q.NextReadyBlock()
	q.MarkBlockFailed(0)

	nv, ok := q.NextReadyBlock()
	require.True(t, ok, "a failed block must remain available for a retry")
	assert.Equal(t, chainhash.Height(0), nv.Data.Height)
}

func TestPushBlockDropsHeightsBelowNextExpected(t *testing.T) {
	q := New(5)
	q.PushBlock(nvAt(3))
	assert.Equal(t, 0, q.BufferedCount())
}

func TestOutOfOrderBlocksReleaseInHeightOrder(t *testing.T) {
	q := New(0)
	q.PushBlock(nvAt(2))
	q.PushBlock(nvAt(0))
	q.PushBlock(nvAt(1))

	for expected := chainhash.Height(0); expected <= 2; expected++ {
		nv, ok := q.NextReadyBlock()
		require.True(t, ok, "height %d should be ready", expected)
		assert.Equal(t, expected, nv.Data.Height)
		q.MarkBlockProcessed(expected)
	}
}

func TestBufferedCountReflectsOutstandingBlocks(t *testing.T) {
	q := New(0)
	assert.Equal(t, 0, q.BufferedCount())
	q.PushBlock(nvAt(0))
	q.PushBlock(nvAt(1))
	assert.Equal(t, 2, q.BufferedCount())
}
