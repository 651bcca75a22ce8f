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

// Package block defines the block payload and the validated/non-validated
// typestate pair (spec §3). Both variants share the same field layout; the
// validated variant exists only as a compile-time proof that the block
// validator accepted it.
package block

import (
	"time"

	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/tx"
)

// Data is the content-hashed payload shared by both block variants.
type Data struct {
	Height           chainhash.Height
	PrevHash         *chainhash.Hash // nil only for genesis
	Nonce            uint64
	DifficultyTarget uint32
	TxMerkleRoot     chainhash.Hash
	Transactions     []*tx.Transaction
	Timestamp        time.Time
}

// Encode renders Data into the stable binary layout used for hashing and
// for the on-disk/wire codec.
func (d Data) Encode() []byte {
	var buf []byte
	buf = append(buf, d.Height.BigEndianBytes()...)
	if d.PrevHash != nil {
		buf = append(buf, 1)
		buf = append(buf, d.PrevHash.Bytes()...)
	} else {
		buf = append(buf, 0)
	}
	buf = appendUint64(buf, d.Nonce)
	buf = appendUint32(buf, d.DifficultyTarget)
	buf = append(buf, d.TxMerkleRoot.Bytes()...)
	buf = appendUint64(buf, uint64(len(d.Transactions)))
	for _, t := range d.Transactions {
		buf = append(buf, t.Hash.Bytes()...)
	}
	buf = appendUint64(buf, uint64(d.Timestamp.UnixMilli()))
	return buf
}

// Hash returns the content hash of the Data.
func (d Data) Hash() chainhash.Hash {
	return chainhash.Sum(d.Encode())
}

// NonValidated is a block whose transactions have not been run through the
// block validator.
type NonValidated struct {
	Hash chainhash.Hash
	Data Data
}

// NewNonValidated computes the block's content hash from its data.
func NewNonValidated(d Data) NonValidated {
	return NonValidated{Hash: d.Hash(), Data: d}
}

// Validated is a block whose transactions passed the block validator. The
// only way to obtain one is validate.Validate (non-validated -> validated);
// the only way to go back is Downgrade (validated -> non-validated, for
// re-validation). Treat the exported fields below as read-only outside of
// the validate package — nothing else in this codebase should construct a
// Validated value directly.
type Validated struct {
	Hash chainhash.Hash
	Data Data
}

// NewValidated is called exclusively by internal/validate once a
// NonValidated block has passed every structural and content rule.
func NewValidated(b NonValidated) Validated {
	return Validated{Hash: b.Hash, Data: b.Data}
}

// Downgrade is the explicit back-edge to NonValidated for re-validation,
// e.g. when the processor worker retries a block after a transient failure
// that was not itself a validation failure.
func (v Validated) Downgrade() NonValidated {
	return NonValidated{Hash: v.Hash, Data: v.Data}
}

// Template is a mining input: the next block's skeleton, mutable while
// mining (nonce increments, timestamp refreshes) until a valid proof is
// found and it is turned into a NonValidated block.
type Template struct {
	Height           chainhash.Height
	PrevHash         *chainhash.Hash
	Nonce            uint64
	DifficultyTarget uint32
	Transactions     []*tx.Transaction
	Timestamp        time.Time
}

// NewTemplate builds a mining template for the block that follows prev.
func NewTemplate(prev *NonValidated, difficultyTarget uint32, transactions []*tx.Transaction, timestamp time.Time) Template {
	if prev == nil {
		return Template{
			Height:           chainhash.Genesis,
			PrevHash:         nil,
			DifficultyTarget: difficultyTarget,
			Transactions:     transactions,
			Timestamp:        timestamp,
		}
	}
	prevHash := prev.Hash
	return Template{
		Height:           prev.Data.Height.Next(),
		PrevHash:         &prevHash,
		DifficultyTarget: difficultyTarget,
		Transactions:     transactions,
		Timestamp:        timestamp,
	}
}

// Finalize computes the merkle root over the template's transactions and
// produces the non-validated block ready for the validator.
func (t Template) Finalize() (NonValidated, error) {
	hashes := make([]chainhash.Hash, len(t.Transactions))
	for i, txn := range t.Transactions {
		hashes[i] = txn.Hash
	}
	root, err := tx.MerkleRoot(hashes)
	if err != nil {
		return NonValidated{}, err
	}
	d := Data{
		Height:           t.Height,
		PrevHash:         t.PrevHash,
		Nonce:            t.Nonce,
		DifficultyTarget: t.DifficultyTarget,
		TxMerkleRoot:     root,
		Transactions:     t.Transactions,
		Timestamp:        t.Timestamp,
	}
	return NewNonValidated(d), nil
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
	return append(buf, b[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (24 - 8*i))
	}
	return append(buf, b[:]...)
}
