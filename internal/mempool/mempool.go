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

// Package mempool is the in-memory unconfirmed-transaction holding area
// (spec §4.6): a plain hash-keyed map guarded by one read-many/write-one
// lock, evicted wholesale as blocks commit.
package mempool

import (
	"sort"
	"sync"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/tx"
)

// Mempool holds transactions not yet included in a committed block.
type Mempool struct {
	mu  sync.RWMutex
	txs map[chainhash.Hash]*tx.Transaction
}

func New() *Mempool {
	return &Mempool{txs: make(map[chainhash.Hash]*tx.Transaction)}
}

// PlaceTransaction inserts t, overwriting any existing entry with the same
// hash, and returns it back to the caller.
func (m *Mempool) PlaceTransaction(t *tx.Transaction) *tx.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[t.Hash] = t
	return t
}

// ApplyBlock removes every transaction hash present in b from the pool,
// whether or not it was present to begin with.
func (m *Mempool) ApplyBlock(nv block.NonValidated) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range nv.Data.Transactions {
		delete(m.txs, t.Hash)
	}
}

// GetTransactionsByHashes resolves a batch of hashes, omitting any not
// currently held.
func (m *Mempool) GetTransactionsByHashes(hashes []chainhash.Hash) []*tx.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*tx.Transaction, 0, len(hashes))
	for _, h := range hashes {
		if t, ok := m.txs[h]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Size returns the current number of held transactions.
func (m *Mempool) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txs)
}

// GetPaginatedTransactions returns a (skip, limit) slice in a stable
// hash-sorted order plus the total held count. Sorting by hash rather than
// insertion time keeps pagination deterministic across calls without
// tracking insertion order separately.
func (m *Mempool) GetPaginatedTransactions(skip, limit int) ([]*tx.Transaction, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*tx.Transaction, 0, len(m.txs))
	for _, t := range m.txs {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Hash.Hex() < all[j].Hash.Hex()
	})

	total := len(all)
	if skip >= total {
		return []*tx.Transaction{}, total
	}
	end := skip + limit
	if end > total || limit <= 0 {
		end = total
	}
	return all[skip:end], total
}
