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

package mempool

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/tx"
)

func newTx(t *testing.T, seed string, amount int64) *tx.Transaction {
	t.Helper()
	return tx.New(nil, []tx.Output{{WalletAddress: chainhash.Sum([]byte(seed)), Amount: big.NewInt(amount)}}, time.UnixMilli(1))
}

func TestPlaceTransactionStoresAndReturns(t *testing.T) {
	m := New()
	txn := newTx(t, "a", 1)
	got := m.PlaceTransaction(txn)
	assert.Same(t, txn, got)
	assert.Equal(t, 1, m.Size())
}

func TestPlaceTransactionOverwritesSameHash(t *testing.T) {
	m := New()
	txn := newTx(t, "a", 1)
	m.PlaceTransaction(txn)
	m.PlaceTransaction(txn)
	assert.Equal(t, 1, m.Size())
}

func TestGetTransactionsByHashesOmitsMissing(t *testing.T) {
	m := New()
	a := newTx(t, "a", 1)
	m.PlaceTransaction(a)

	found := m.GetTransactionsByHashes([]chainhash.Hash{a.Hash, chainhash.Sum([]byte("missing"))})
	require.Len(t, found, 1)
	assert.Equal(t, a.Hash, found[0].Hash)
}

func TestApplyBlockRemovesIncludedTransactions(t *testing.T) {
	m := New()
	a := newTx(t, "a", 1)
	b := newTx(t, "b", 2)
	m.PlaceTransaction(a)
	m.PlaceTransaction(b)

	nv := block.NonValidated{Data: block.Data{Transactions: []*tx.Transaction{a}}}
	m.ApplyBlock(nv)

	assert.Equal(t, 1, m.Size())
	assert.Empty(t, m.GetTransactionsByHashes([]chainhash.Hash{a.Hash}))
}

func TestGetPaginatedTransactionsIsDeterministicallySorted(t *testing.T) {
	m := New()
	for _, seed := range []string{"c", "a", "b"} {
		m.PlaceTransaction(newTx(t, seed, 1))
	}

	page1, total := m.GetPaginatedTransactions(0, 10)
	page2, _ := m.GetPaginatedTransactions(0, 10)
	require.Equal(t, 3, total)
	require.Len(t, page1, 3)
	assert.Equal(t, page1, page2)
	assert.True(t, page1[0].Hash.Hex() < page1[1].Hash.Hex())
	assert.True(t, page1[1].Hash.Hex() < page1[2].Hash.Hex())
}

func TestGetPaginatedTransactionsRespectsSkipAndLimit(t *testing.T) {
	m := New()
	for _, seed := range []string{"a", "b", "c", "d"} {
		m.PlaceTransaction(newTx(t, seed, 1))
	}

	page, total := m.GetPaginatedTransactions(2, 1)
	assert.Equal(t, 4, total)
	assert.Len(t, page, 1)
}

func TestGetPaginatedTransactionsSkipPastEndReturnsEmpty(t *testing.T) {
	m := New()
	m.PlaceTransaction(newTx(t, "a", 1))

	page, total := m.GetPaginatedTransactions(5, 10)
	assert.Equal(t, 1, total)
	assert.Empty(t, page)
}
