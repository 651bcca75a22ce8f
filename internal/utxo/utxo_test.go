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

package utxo

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/repo"
	"github.com/kon14/taliro/internal/tx"
)

func openStore(t *testing.T) *repo.Store {
	t.Helper()
	s, err := repo.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestApplyBlockInsertsCoinbaseOutputs(t *testing.T) {
	store := New(openStore(t))
	minerAddr := chainhash.Sum([]byte("miner"))
	coinbase := tx.New(nil, []tx.Output{{WalletAddress: minerAddr, Amount: big.NewInt(50)}}, time.UnixMilli(1))
	nv := block.NonValidated{Data: block.Data{Transactions: []*tx.Transaction{coinbase}}}

	require.NoError(t, store.ApplyBlock(nv))

	op := tx.Outpoint{TxID: coinbase.Hash, OutputIndex: 0}
	got, ok, err := store.GetUtxo(op)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, minerAddr, got.Output.WalletAddress)
	assert.Equal(t, 0, got.Output.Amount.Cmp(big.NewInt(50)))
}

func TestApplyBlockSpendsConsumedInputs(t *testing.T) {
	store := New(openStore(t))
	minerAddr := chainhash.Sum([]byte("miner"))
	recvAddr := chainhash.Sum([]byte("recv"))

	coinbase := tx.New(nil, []tx.Output{{WalletAddress: minerAddr, Amount: big.NewInt(50)}}, time.UnixMilli(1))
	require.NoError(t, store.ApplyBlock(block.NonValidated{Data: block.Data{Transactions: []*tx.Transaction{coinbase}}}))

	spendOp := tx.Outpoint{TxID: coinbase.Hash, OutputIndex: 0}
	spend := tx.New([]tx.Input{{Previous: spendOp}}, []tx.Output{{WalletAddress: recvAddr, Amount: big.NewInt(50)}}, time.UnixMilli(2))
	require.NoError(t, store.ApplyBlock(block.NonValidated{Data: block.Data{Transactions: []*tx.Transaction{spend}}}))

	_, ok, err := store.GetUtxo(spendOp)
	require.NoError(t, err)
	assert.False(t, ok, "spent outpoint must no longer resolve")

	newOp := tx.Outpoint{TxID: spend.Hash, OutputIndex: 0}
	got, ok, err := store.GetUtxo(newOp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, recvAddr, got.Output.WalletAddress)
}

func TestGetUtxosByOutpointsSkipsMissing(t *testing.T) {
	store := New(openStore(t))
	coinbase := tx.New(nil, []tx.Output{{WalletAddress: chainhash.Sum([]byte("a")), Amount: big.NewInt(1)}}, time.UnixMilli(1))
	require.NoError(t, store.ApplyBlock(block.NonValidated{Data: block.Data{Transactions: []*tx.Transaction{coinbase}}}))

	present := tx.Outpoint{TxID: coinbase.Hash, OutputIndex: 0}
	missing := tx.Outpoint{TxID: chainhash.Sum([]byte("nope")), OutputIndex: 0}

	resolved, err := store.GetUtxosByOutpoints([]tx.Outpoint{present, missing})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestGetUtxosByAddressUsesSecondaryIndex(t *testing.T) {
	store := New(openStore(t))
	addrA := chainhash.Sum([]byte("alice"))
	addrB := chainhash.Sum([]byte("bob"))

	coinbase := tx.New(nil, []tx.Output{
		{WalletAddress: addrA, Amount: big.NewInt(1)},
		{WalletAddress: addrB, Amount: big.NewInt(2)},
		{WalletAddress: addrA, Amount: big.NewInt(3)},
	}, time.UnixMilli(1))
	require.NoError(t, store.ApplyBlock(block.NonValidated{Data: block.Data{Transactions: []*tx.Transaction{coinbase}}}))

	aliceUtxos, err := store.GetUtxosByAddress(addrA)
	require.NoError(t, err)
	assert.Len(t, aliceUtxos, 2)

	bobUtxos, err := store.GetUtxosByAddress(addrB)
	require.NoError(t, err)
	assert.Len(t, bobUtxos, 1)
}

func TestGetUtxosByAddressDropsEntryAfterSpend(t *testing.T) {
	store := New(openStore(t))
	addrA := chainhash.Sum([]byte("alice"))
	addrB := chainhash.Sum([]byte("bob"))

	coinbase := tx.New(nil, []tx.Output{{WalletAddress: addrA, Amount: big.NewInt(10)}}, time.UnixMilli(1))
	require.NoError(t, store.ApplyBlock(block.NonValidated{Data: block.Data{Transactions: []*tx.Transaction{coinbase}}}))

	spendOp := tx.Outpoint{TxID: coinbase.Hash, OutputIndex: 0}
	spend := tx.New([]tx.Input{{Previous: spendOp}}, []tx.Output{{WalletAddress: addrB, Amount: big.NewInt(10)}}, time.UnixMilli(2))
	require.NoError(t, store.ApplyBlock(block.NonValidated{Data: block.Data{Transactions: []*tx.Transaction{spend}}}))

	aliceUtxos, err := store.GetUtxosByAddress(addrA)
	require.NoError(t, err)
	assert.Empty(t, aliceUtxos, "the secondary index must not resurrect spent outpoints")
}

func TestGetUtxosBulkScansEverything(t *testing.T) {
	store := New(openStore(t))
	coinbase := tx.New(nil, []tx.Output{
		{WalletAddress: chainhash.Sum([]byte("a")), Amount: big.NewInt(1)},
		{WalletAddress: chainhash.Sum([]byte("b")), Amount: big.NewInt(2)},
	}, time.UnixMilli(1))
	require.NoError(t, store.ApplyBlock(block.NonValidated{Data: block.Data{Transactions: []*tx.Transaction{coinbase}}}))

	all, err := store.GetUtxos()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
