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

package blockchain

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

func genesisBlock(t *testing.T) block.Validated {
	t.Helper()
	coinbase := tx.New(nil, []tx.Output{{WalletAddress: chainhash.Sum([]byte("miner")), Amount: big.NewInt(50)}}, time.UnixMilli(1))
	tpl := block.NewTemplate(nil, 1, []*tx.Transaction{coinbase}, time.UnixMilli(1))
	nv, err := tpl.Finalize()
	require.NoError(t, err)
	return block.NewValidated(nv)
}

func TestGetTipInfoNilBeforeAnyBlock(t *testing.T) {
	m := New(openStore(t))
	tip, err := m.GetTipInfo()
	require.NoError(t, err)
	assert.Nil(t, tip)
}

func TestAddBlockThenSetTipRoundTrips(t *testing.T) {
	m := New(openStore(t))
	genesis := genesisBlock(t)

	require.NoError(t, m.AddBlock(genesis))
	require.NoError(t, m.SetTip(genesis.Hash, genesis.Data.Height))

	tip, err := m.GetTipInfo()
	require.NoError(t, err)
	require.NotNil(t, tip)
	assert.Equal(t, genesis.Hash, tip.Hash)
}

func TestAddBlockRejectsContinuityMismatch(t *testing.T) {
	m := New(openStore(t))
	genesis := genesisBlock(t)
	require.NoError(t, m.AddBlock(genesis))
	require.NoError(t, m.SetTip(genesis.Hash, genesis.Data.Height))

	coinbase := tx.New(nil, []tx.Output{{WalletAddress: chainhash.Sum([]byte("x")), Amount: big.NewInt(1)}}, time.UnixMilli(2))
	wrongPrev := chainhash.Sum([]byte("not-the-tip"))
	tpl := block.Template{Height: chainhash.Genesis.Next(), PrevHash: &wrongPrev, DifficultyTarget: 1, Transactions: []*tx.Transaction{coinbase}, Timestamp: time.UnixMilli(2)}
	nv, err := tpl.Finalize()
	require.NoError(t, err)

	err = m.AddBlock(block.NewValidated(nv))
	require.Error(t, err)
}

func TestGetKnownBlockHitsCacheAndStore(t *testing.T) {
	m := New(openStore(t))
	genesis := genesisBlock(t)
	require.NoError(t, m.AddBlock(genesis))

	got, ok, err := m.GetKnownBlock(genesis.Hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, genesis.Hash, got.Hash)

	unknown, ok, err := m.GetKnownBlock(chainhash.Sum([]byte("nope")))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, unknown)
}

func TestHasCanonBlockTracksTip(t *testing.T) {
	m := New(openStore(t))
	genesis := genesisBlock(t)
	require.NoError(t, m.AddBlock(genesis))
	require.NoError(t, m.SetTip(genesis.Hash, genesis.Data.Height))

	canon, err := m.HasCanonBlock(genesis.Hash, genesis.Data.Height)
	require.NoError(t, err)
	assert.True(t, canon)

	canon, err = m.HasCanonBlock(chainhash.Sum([]byte("orphan")), genesis.Data.Height)
	require.NoError(t, err)
	assert.False(t, canon)
}

func TestGetKnownBlocksByHeightRangeFailsOnGap(t *testing.T) {
	m := New(openStore(t))
	genesis := genesisBlock(t)
	require.NoError(t, m.AddBlock(genesis))

	_, err := m.GetKnownBlocksByHeightRange(chainhash.Genesis, chainhash.Genesis.Next())
	require.Error(t, err, "a missing block in the range must surface as an error, not a short slice")
}

func TestGetKnownBlocksByHeightRangeReturnsContiguousRun(t *testing.T) {
	m := New(openStore(t))
	genesis := genesisBlock(t)
	require.NoError(t, m.AddBlock(genesis))
	require.NoError(t, m.SetTip(genesis.Hash, genesis.Data.Height))

	blocks, err := m.GetKnownBlocksByHeightRange(chainhash.Genesis, chainhash.Genesis)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, genesis.Hash, blocks[0].Hash)
}

func TestGetUnknownBlockHeightsNilTipWantsFromGenesis(t *testing.T) {
	m := New(openStore(t))
	rng, err := m.GetUnknownBlockHeights(5)
	require.NoError(t, err)
	require.NotNil(t, rng)
	assert.Equal(t, chainhash.Genesis, rng[0])
	assert.Equal(t, chainhash.Height(5), rng[1])
}

func TestGetUnknownBlockHeightsCaughtUpReturnsNil(t *testing.T) {
	m := New(openStore(t))
	genesis := genesisBlock(t)
	require.NoError(t, m.AddBlock(genesis))
	require.NoError(t, m.SetTip(genesis.Hash, genesis.Data.Height))

	rng, err := m.GetUnknownBlockHeights(genesis.Data.Height)
	require.NoError(t, err)
	assert.Nil(t, rng)
}
