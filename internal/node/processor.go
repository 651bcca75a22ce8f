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

package node

import (
	"time"

	"github.com/kon14/taliro/internal/dispatcher"
	"github.com/kon14/taliro/internal/outbox"
)

// DefaultProcessorPollInterval is the processor worker's bounded poll
// interval when the queue has no ready block (spec §4.10).
const DefaultProcessorPollInterval = 100 * time.Millisecond

// runProcessor is the processor worker (spec §4.10): one background task
// that drains the processing queue in strict height order.
func (n *Node) runProcessor() {
	ticker := time.NewTicker(n.processorPoll)
	defer ticker.Stop()
	for {
		select {
		case <-n.shutdownCh:
			return
		default:
		}

		n.metrics.SetProcQueueDepth(n.procQueue.BufferedCount())

		nv, ok := n.procQueue.NextReadyBlock()
		if !ok {
			select {
			case <-n.shutdownCh:
				return
			case <-ticker.C:
			}
			continue
		}

		height := nv.Data.Height
		validated, err := n.blockValidator.Validate(nv)
		if err != nil {
			// Open question carried forward from the source design (spec §9):
			// a validation failure here retries forever instead of being
			// permanently dropped. Left as-is rather than silently "fixed".
			log.Warn("block validation failed, will retry", "height", height, "err", err)
			n.procQueue.MarkBlockFailed(height)
			continue
		}
		if err := n.chain.AddBlock(validated); err != nil {
			log.Warn("add_block failed, will retry", "height", height, "err", err)
			// Not a validation failure: re-buffer the downgraded form rather
			// than assuming the still-buffered nv is equivalent.
			n.procQueue.PushBlock(validated.Downgrade())
			n.procQueue.MarkBlockFailed(height)
			continue
		}
		if err := dispatcher.HandleBlockAppend(n.dispatcher, nv); err != nil {
			log.Error("HandleBlockAppend failed after a durable commit", "height", height, "err", err)
			n.procQueue.MarkBlockFailed(height)
			continue
		}
		n.procQueue.MarkBlockProcessed(height)
		n.metrics.ObserveBlockCommitted()
		n.metrics.SetMempoolSize(n.mempool.Size())
	}
}

// replayOutboxEntry is the outbox.AppendHandler the relay calls for each
// unprocessed entry: it replays the append side effects through the
// HandleBlockAppend command, whose handler (handleBlockAppend) is the one
// the direct mining/genesis path calls.
func (n *Node) replayOutboxEntry(entry outbox.Entry) error {
	switch entry.Type {
	case outbox.EventBlockchainAppendBlock:
		return dispatcher.HandleBlockAppend(n.dispatcher, entry.Block)
	default:
		log.Warn("unknown outbox event type, dropping", "type", entry.Type)
		return nil
	}
}
