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

// Package procqueue is the block processing queue (spec §4.9): an
// in-order, single-flight source of "ready" blocks for the processor
// worker. In the node it is fed by the sync queue; locally mined and
// genesis blocks are committed directly and do not pass through it.
package procqueue

import (
	"sync"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/chainhash"
)

// Queue buffers out-of-order blocks and releases them to a single caller
// in strict increasing height order.
type Queue struct {
	mu           sync.Mutex
	nextExpected chainhash.Height
	buffered     map[chainhash.Height]block.NonValidated
	inFlight     map[chainhash.Height]struct{}
}

// New builds a Queue whose first expected height is start (chainhash.Genesis
// for a fresh chain, or one past the local tip when resuming).
func New(start chainhash.Height) *Queue {
	return &Queue{
		nextExpected: start,
		buffered:     make(map[chainhash.Height]block.NonValidated),
		inFlight:     make(map[chainhash.Height]struct{}),
	}
}

// PushBlock buffers nv under its height if that height is >= nextExpected;
// earlier heights are dropped as already processed or duplicate (spec
// §4.9, §8 boundary behavior).
func (q *Queue) PushBlock(nv block.NonValidated) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if nv.Data.Height < q.nextExpected {
		return
	}
	q.buffered[nv.Data.Height] = nv
}

// NextReadyBlock returns the block at nextExpected if it is buffered and
// not already in-flight, atomically marking it in-flight. Only one height
// can be in-flight at a time by construction: nextExpected only advances
// once, in MarkBlockProcessed.
func (q *Queue) NextReadyBlock() (block.NonValidated, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, busy := q.inFlight[q.nextExpected]; busy {
		return block.NonValidated{}, false
	}
	nv, ok := q.buffered[q.nextExpected]
	if !ok {
		return block.NonValidated{}, false
	}
	q.inFlight[q.nextExpected] = struct{}{}
	return nv, true
}

// MarkBlockProcessed clears the in-flight mark and the buffered entry for
// height, and advances nextExpected only if height equals the current
// nextExpected (spec §4.9, §8 boundary behavior).
func (q *Queue) MarkBlockProcessed(height chainhash.Height) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, height)
	if height != q.nextExpected {
		return
	}
	delete(q.buffered, height)
	q.nextExpected = q.nextExpected.Next()
}

// MarkBlockFailed clears only the in-flight mark, leaving the block
// buffered for a retry on the next poll.
func (q *Queue) MarkBlockFailed(height chainhash.Height) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, height)
}

// NextExpected returns the queue's current cursor, mainly for tests and
// diagnostics.
func (q *Queue) NextExpected() chainhash.Height {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nextExpected
}

// BufferedCount returns the number of blocks currently held, ready or not;
// exposed for the procqueue_buffered_blocks gauge.
func (q *Queue) BufferedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffered)
}
