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

// Package tx defines transactions, outpoints, outputs and UTXOs — the
// UTXO-model analogue of klaytn's blockchain/types transaction package.
package tx

import (
	"math/big"
	"time"

	"github.com/kon14/taliro/internal/chainhash"
)

// Outpoint references a previous transaction's output by its originating
// transaction hash and output index.
type Outpoint struct {
	TxID        chainhash.Hash
	OutputIndex uint32
}

// Output is a single spendable amount addressed to a wallet.
type Output struct {
	WalletAddress chainhash.Hash
	Amount        *big.Int // unsigned 128-bit semantics enforced by validation
}

// Input references a previous outpoint that this transaction consumes.
type Input struct {
	Previous Outpoint
}

// Transaction is the content-addressed (hash, data) pair described in
// spec §3. A coinbase transaction has no inputs.
type Transaction struct {
	Hash      chainhash.Hash
	Inputs    []Input
	Outputs   []Output
	Timestamp time.Time
}

// IsCoinbase reports whether the transaction has no inputs.
func (t *Transaction) IsCoinbase() bool { return len(t.Inputs) == 0 }

// Utxo pairs an outpoint with the output it has not yet been spent as an
// input of a later transaction.
type Utxo struct {
	Outpoint Outpoint
	Output   Output
}

// New builds a Transaction and computes its content hash. Timestamp is
// caller-supplied so mining/genesis code can pin deterministic values.
func New(inputs []Input, outputs []Output, timestamp time.Time) *Transaction {
	t := &Transaction{Inputs: inputs, Outputs: outputs, Timestamp: timestamp}
	t.Hash = ComputeHash(inputs, outputs, timestamp)
	return t
}

// ComputeHash is the content hash of a transaction's fields, independent of
// the Transaction value itself so validators can recompute and compare.
func ComputeHash(inputs []Input, outputs []Output, timestamp time.Time) chainhash.Hash {
	enc := Encode(inputs, outputs, timestamp)
	return chainhash.Sum(enc)
}

// Encode renders a transaction's fields into the stable binary layout used
// both for hashing and for the on-disk/wire codec (spec §6).
func Encode(inputs []Input, outputs []Output, timestamp time.Time) []byte {
	var buf []byte
	buf = appendUint64(buf, uint64(len(inputs)))
	for _, in := range inputs {
		buf = append(buf, in.Previous.TxID.Bytes()...)
		buf = appendUint32(buf, in.Previous.OutputIndex)
	}
	buf = appendUint64(buf, uint64(len(outputs)))
	for _, out := range outputs {
		buf = append(buf, out.WalletAddress.Bytes()...)
		amt := out.Amount
		if amt == nil {
			amt = big.NewInt(0)
		}
		ab := amt.Bytes()
		buf = appendUint64(buf, uint64(len(ab)))
		buf = append(buf, ab...)
	}
	buf = appendUint64(buf, uint64(timestamp.UnixMilli()))
	return buf
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
