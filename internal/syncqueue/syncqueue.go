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

// Package syncqueue is the block sync queue (spec §4.8): deduplicated
// intake of "fetch this height from this peer" requests, and the handoff
// of a received block into the processing queue.
package syncqueue

import (
	"sync"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/logger"
)

var log = logger.New("syncqueue")

// RequestSender dispatches a "get block by height" request to a peer. In
// the running node it calls the ProxyForwardNetworkEvent handler directly; kept as a
// narrow function type so this package does not depend on the dispatcher
// or wire packages.
type RequestSender func(height chainhash.Height, peer string)

// BlockPusher hands a received block to the processing queue.
type BlockPusher interface {
	PushBlock(nv block.NonValidated)
}

// Queue tracks, per height, whether a fetch is in-progress or already
// completed.
type Queue struct {
	mu          sync.Mutex
	inProgress  map[chainhash.Height]struct{}
	completed   map[chainhash.Height]struct{}
	sendRequest RequestSender
	processing  BlockPusher
}

func New(sendRequest RequestSender, processing BlockPusher) *Queue {
	return &Queue{
		inProgress:  make(map[chainhash.Height]struct{}),
		completed:   make(map[chainhash.Height]struct{}),
		sendRequest: sendRequest,
		processing:  processing,
	}
}

// RequestBlock dispatches a fetch for height/peer unless one is already
// in-progress or the height is already completed (spec §4.8).
func (q *Queue) RequestBlock(height chainhash.Height, peer string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, done := q.completed[height]; done {
		return
	}
	if _, inProgress := q.inProgress[height]; inProgress {
		return
	}
	q.inProgress[height] = struct{}{}
	q.sendRequest(height, peer)
}

// OnBlockReceived moves height from in-progress (if present) to completed
// and forwards the block to the processing queue, unless height was
// already completed (a late duplicate delivery).
func (q *Queue) OnBlockReceived(nv block.NonValidated, peer string) {
	height := nv.Data.Height

	q.mu.Lock()
	if _, done := q.completed[height]; done {
		q.mu.Unlock()
		log.Debug("dropping already-completed block", "height", height, "peer", peer)
		return
	}
	delete(q.inProgress, height)
	q.completed[height] = struct{}{}
	q.mu.Unlock()

	q.processing.PushBlock(nv)
}

// IsInProgress reports whether a fetch for height is currently outstanding.
func (q *Queue) IsInProgress(height chainhash.Height) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.inProgress[height]
	return ok
}
