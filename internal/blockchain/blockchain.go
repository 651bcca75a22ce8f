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

// Package blockchain is the blockchain manager (spec §4.2): block and
// height-index storage, the tip cache, and the canon/known distinction.
// It plays the role klaytn's storage/database.DBManager + blockchain
// package play together, but scoped to the UTXO core rather than an
// account/state-trie model.
package blockchain

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/logger"
	"github.com/kon14/taliro/internal/outbox"
	"github.com/kon14/taliro/internal/repo"
	"github.com/kon14/taliro/internal/taliroerr"
	"github.com/kon14/taliro/internal/wire"
)

var log = logger.New("blockchain")

// TipInfo is the (hash, height) of the most recently committed block on
// the active chain.
type TipInfo struct {
	Hash   chainhash.Hash
	Height chainhash.Height
}

const blockCacheSize = 1024

// Manager owns block/height/tip persistence and the in-memory tip cache,
// the single source of truth for "current tip" during a run (spec §3
// Ownership).
type Manager struct {
	store *repo.Store

	tipMu sync.RWMutex
	tip   *TipInfo // nil until the first block is committed

	cache *lru.Cache // chainhash.Hash -> block.NonValidated, read-through
}

// New builds a Manager over the given repository store.
func New(store *repo.Store) *Manager {
	c, _ := lru.New(blockCacheSize)
	return &Manager{store: store, cache: c}
}

// AddBlock persists a validated block: the block itself, its height->hash
// mapping, and an outbox entry recording the append, all in one atomic
// unit over {blocks, heights, outbox_unprocessed}. The tip is NOT updated
// here; HandleBlockAppend advances it after UTXO and mempool have been
// updated (spec §4.2).
func (m *Manager) AddBlock(b block.Validated) error {
	tip, err := m.GetTipInfo()
	if err != nil {
		return err
	}
	if !continuityOK(tip, b.Data.PrevHash) {
		return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindContinuityMismatch, taliroerr.EnvelopeConflict, "block's prev_hash does not match the current tip")
	}

	nv := block.NonValidated{Hash: b.Hash, Data: b.Data}
	encodedBlock := wire.EncodeBlock(nv)
	entry := outbox.NewAppendBlockEntry(nv)
	encodedEntry, err := outbox.EncodeEntry(entry)
	if err != nil {
		return err
	}

	err = m.store.Update(func(u *repo.Unit) error {
		if err := u.Put(repo.TreeBlocks, b.Hash.Bytes(), encodedBlock); err != nil {
			return err
		}
		if err := u.Put(repo.TreeHeights, b.Data.Height.BigEndianBytes(), b.Hash.Bytes()); err != nil {
			return err
		}
		return u.Put(repo.TreeOutboxUnprocessed, entry.StoreKey(), encodedEntry)
	})
	if err != nil {
		return err
	}
	m.cache.Add(b.Hash, nv)
	log.Info("block appended", "height", b.Data.Height, "hash", b.Hash.Hex())
	return nil
}

func continuityOK(tip *TipInfo, prevHash *chainhash.Hash) bool {
	if tip == nil {
		return prevHash == nil
	}
	return prevHash != nil && *prevHash == tip.Hash
}

// SetTip write-through updates the persistent tip and the tip cache.
func (m *Manager) SetTip(hash chainhash.Hash, height chainhash.Height) error {
	if err := m.store.Update(func(u *repo.Unit) error {
		return u.Put(repo.TreeMeta, []byte(repo.MetaChainTip), hash.Bytes())
	}); err != nil {
		return err
	}
	m.tipMu.Lock()
	m.tip = &TipInfo{Hash: hash, Height: height}
	m.tipMu.Unlock()
	return nil
}

// GetTipInfo returns the current tip, populating the cache from the meta
// store on first read. Returns nil, nil if no tip has ever been set.
func (m *Manager) GetTipInfo() (*TipInfo, error) {
	m.tipMu.RLock()
	if m.tip != nil {
		t := *m.tip
		m.tipMu.RUnlock()
		return &t, nil
	}
	m.tipMu.RUnlock()

	m.tipMu.Lock()
	defer m.tipMu.Unlock()
	if m.tip != nil {
		t := *m.tip
		return &t, nil
	}

	var hashBytes []byte
	var found bool
	err := m.store.View(func(u *repo.Unit) error {
		v, ok, err := u.Get(repo.TreeMeta, []byte(repo.MetaChainTip))
		if err != nil {
			return err
		}
		hashBytes, found = v, ok
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	hash, err := chainhash.New(hashBytes)
	if err != nil {
		return nil, err
	}
	nv, ok, err := m.getKnownBlock(hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, taliroerr.New(taliroerr.GroupStorage, taliroerr.KindStorageGeneric, taliroerr.EnvelopeInternal, "chain tip hash has no corresponding block")
	}
	t := &TipInfo{Hash: hash, Height: nv.Data.Height}
	m.tip = t
	out := *t
	return &out, nil
}

// HasKnownBlock reports whether hash is present in the blocks store.
func (m *Manager) HasKnownBlock(hash chainhash.Hash) (bool, error) {
	_, ok, err := m.getKnownBlock(hash)
	return ok, err
}

// HasCanonBlock reports whether the known block at hash/height is on the
// active chain: height <= tip height, and at tip height, hash == tip hash.
func (m *Manager) HasCanonBlock(hash chainhash.Hash, height chainhash.Height) (bool, error) {
	known, err := m.HasKnownBlock(hash)
	if err != nil || !known {
		return false, err
	}
	tip, err := m.GetTipInfo()
	if err != nil {
		return false, err
	}
	if tip == nil || height > tip.Height {
		return false, nil
	}
	if height == tip.Height {
		return hash == tip.Hash, nil
	}
	return true, nil
}

// GetKnownBlock returns the block stored under hash, if any.
func (m *Manager) GetKnownBlock(hash chainhash.Hash) (*block.NonValidated, bool, error) {
	return m.getKnownBlock(hash)
}

func (m *Manager) getKnownBlock(hash chainhash.Hash) (*block.NonValidated, bool, error) {
	if v, ok := m.cache.Get(hash); ok {
		nv := v.(block.NonValidated)
		return &nv, true, nil
	}
	var raw []byte
	var found bool
	err := m.store.View(func(u *repo.Unit) error {
		v, ok, err := u.Get(repo.TreeBlocks, hash.Bytes())
		if err != nil {
			return err
		}
		raw, found = v, ok
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	nv, err := wire.DecodeBlock(raw)
	if err != nil {
		return nil, false, err
	}
	m.cache.Add(hash, nv)
	return &nv, true, nil
}

// GetCanonBlock returns the block at hash only if it is canon.
func (m *Manager) GetCanonBlock(hash chainhash.Hash) (*block.NonValidated, bool, error) {
	nv, ok, err := m.getKnownBlock(hash)
	if err != nil || !ok {
		return nil, ok, err
	}
	canon, err := m.HasCanonBlock(hash, nv.Data.Height)
	if err != nil || !canon {
		return nil, false, err
	}
	return nv, true, nil
}

// GetKnownBlockByHeight resolves the hash at height via the heights tree
// and returns the corresponding block.
func (m *Manager) GetKnownBlockByHeight(height chainhash.Height) (*block.NonValidated, bool, error) {
	var hashBytes []byte
	var found bool
	err := m.store.View(func(u *repo.Unit) error {
		v, ok, err := u.Get(repo.TreeHeights, height.BigEndianBytes())
		if err != nil {
			return err
		}
		hashBytes, found = v, ok
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	hash, err := chainhash.New(hashBytes)
	if err != nil {
		return nil, false, err
	}
	return m.getKnownBlock(hash)
}

// GetCanonBlockByHeight returns the block at height only if it is canon
// per HasCanonBlock: a stored block above the current tip height is
// reported as not found.
func (m *Manager) GetCanonBlockByHeight(height chainhash.Height) (*block.NonValidated, bool, error) {
	nv, ok, err := m.GetKnownBlockByHeight(height)
	if err != nil || !ok {
		return nil, ok, err
	}
	canon, err := m.HasCanonBlock(nv.Hash, height)
	if err != nil || !canon {
		return nil, false, err
	}
	return nv, true, nil
}

// GetKnownBlocksByHeightRange returns every block in [lo, hi], failing with
// a count-mismatch error if the expected inclusive length is not realized
// -- the signal that a middle block is missing from the store.
func (m *Manager) GetKnownBlocksByHeightRange(lo, hi chainhash.Height) ([]*block.NonValidated, error) {
	if hi < lo {
		return nil, nil
	}
	expected := int(hi-lo) + 1
	out := make([]*block.NonValidated, 0, expected)
	for h := lo; h <= hi; h++ {
		nv, ok, err := m.GetKnownBlockByHeight(h)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, nv)
	}
	if len(out) != expected {
		return nil, taliroerr.New(taliroerr.GroupStorage, taliroerr.KindStorageGeneric, taliroerr.EnvelopeInternal,
			fmt.Sprintf("expected %d blocks in range, found %d", expected, len(out)))
	}
	return out, nil
}

// GetCanonBlocksByHeightRange is GetKnownBlocksByHeightRange restricted to
// the active chain.
func (m *Manager) GetCanonBlocksByHeightRange(lo, hi chainhash.Height) ([]*block.NonValidated, error) {
	blocks, err := m.GetKnownBlocksByHeightRange(lo, hi)
	if err != nil {
		return nil, err
	}
	out := make([]*block.NonValidated, 0, len(blocks))
	for _, b := range blocks {
		canon, err := m.HasCanonBlock(b.Hash, b.Data.Height)
		if err != nil {
			return nil, err
		}
		if canon {
			out = append(out, b)
		}
	}
	return out, nil
}

// GetUnknownBlockHeights returns the inclusive height range the local node
// is missing relative to a remote tip, or nil if the local tip is already
// at or beyond the remote one (spec §4.2).
func (m *Manager) GetUnknownBlockHeights(remoteHeight chainhash.Height) (*[2]chainhash.Height, error) {
	tip, err := m.GetTipInfo()
	if err != nil {
		return nil, err
	}
	if tip == nil {
		return &[2]chainhash.Height{chainhash.Genesis, remoteHeight}, nil
	}
	if tip.Height >= remoteHeight {
		return nil, nil
	}
	return &[2]chainhash.Height{tip.Height.Next(), remoteHeight}, nil
}
