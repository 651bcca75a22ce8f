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

// Package repo is the persistent repository surface the rest of the node
// consumes (spec §6): nine named trees over a single badger.DB, with
// per-workflow atomic units of work. It plays the role klaytn's
// storage/database.DBManager plays over leveldb/badger, but exposes
// multi-tree transactions directly instead of hiding them behind
// accessor methods, because the core's invariants (spec §3) require
// committing across trees atomically.
package repo

import (
	"bytes"

	"github.com/dgraph-io/badger"
	"github.com/kon14/taliro/internal/logger"
	"github.com/kon14/taliro/internal/taliroerr"
)

var log = logger.New("repo")

// Tree names the persistent trees: those of spec §6 plus the
// utxo_by_address index.
type Tree string

const (
	TreeBlocks            Tree = "blockchain_blocks"
	TreeHeights           Tree = "blockchain_heights"
	TreeMeta              Tree = "blockchain_meta"
	TreeUtxo              Tree = "utxo"
	TreeUtxoByAddress     Tree = "utxo_by_address"
	TreeNetworkPeers      Tree = "network_peers"
	TreeNetworkMeta       Tree = "network_meta"
	TreeOutboxUnprocessed Tree = "outbox_unprocessed"
	TreeOutboxProcessed   Tree = "outbox_processed"
)

// MetaChainTip is the well-known key within TreeMeta holding the current
// chain tip hash.
const MetaChainTip = "chain_tip"

// MetaIdentityKeyPair is the well-known key within TreeNetworkMeta holding
// the node's network identity.
const MetaIdentityKeyPair = "identity_key_pair"

// Store opens and owns the single badger database backing every tree.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the badger database at dir. A failure here is
// fatal to node startup per spec §7.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	db, err := badger.Open(opts)
	if err != nil {
		log.Error("failed to open repository store", "dir", dir, "err", err)
		return nil, taliroerr.Wrap(err, taliroerr.GroupStorage, taliroerr.KindStorageGeneric, taliroerr.EnvelopeInternal, "failed to open repository store")
	}
	log.Info("repository store opened", "dir", dir)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	log.Info("repository store closing")
	return s.db.Close()
}

func treeKey(tree Tree, key []byte) []byte {
	out := make([]byte, 0, len(tree)+1+len(key))
	out = append(out, tree...)
	out = append(out, ':')
	out = append(out, key...)
	return out
}

// Unit is one atomic unit of work, wrapping a single badger transaction.
// Every Put/Get/Delete a caller issues inside the same Unit commits (or
// aborts) as a whole, which is how spec §3's cross-tree invariants (block +
// height + outbox; UTXO delete-then-insert; outbox processed-move) hold.
type Unit struct {
	txn *badger.Txn
}

func (u *Unit) Put(tree Tree, key, value []byte) error {
	if err := u.txn.Set(treeKey(tree, key), value); err != nil {
		return taliroerr.StorageWrite(err)
	}
	return nil
}

func (u *Unit) Delete(tree Tree, key []byte) error {
	if err := u.txn.Delete(treeKey(tree, key)); err != nil {
		return taliroerr.StorageWrite(err)
	}
	return nil
}

// Get returns (value, true, nil) on a hit, (nil, false, nil) on a miss, and
// a Storage error only for genuine I/O failures.
func (u *Unit) Get(tree Tree, key []byte) ([]byte, bool, error) {
	item, err := u.txn.Get(treeKey(tree, key))
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, taliroerr.StorageRead(err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, taliroerr.StorageRead(err)
	}
	return val, true, nil
}

// ScanPrefix invokes fn for every key in tree with the given prefix, in
// ascending key order (and therefore ascending numeric order for
// big-endian-encoded keys such as heights), until fn returns false or the
// prefix is exhausted.
func (u *Unit) ScanPrefix(tree Tree, prefix []byte, fn func(key, value []byte) (bool, error)) error {
	fullPrefix := treeKey(tree, prefix)
	it := u.txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100})
	defer it.Close()
	for it.Seek(fullPrefix); it.ValidForPrefix(fullPrefix); it.Next() {
		item := it.Item()
		k := bytes.TrimPrefix(item.KeyCopy(nil), []byte(string(tree)+":"))
		v, err := item.ValueCopy(nil)
		if err != nil {
			return taliroerr.StorageRead(err)
		}
		cont, err := fn(k, v)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return nil
}

// Update runs fn inside a read-write transaction, committing iff fn
// returns nil.
func (s *Store) Update(fn func(*Unit) error) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return fn(&Unit{txn: txn})
	})
	if err != nil {
		if _, ok := err.(*taliroerr.Error); ok {
			return err
		}
		return taliroerr.StorageTxn(err)
	}
	return nil
}

// View runs fn inside a read-only transaction.
func (s *Store) View(fn func(*Unit) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		return fn(&Unit{txn: txn})
	})
	if err != nil {
		if _, ok := err.(*taliroerr.Error); ok {
			return err
		}
		return taliroerr.StorageTxn(err)
	}
	return nil
}
