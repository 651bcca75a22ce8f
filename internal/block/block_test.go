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

package block

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/tx"
)

func TestValidatedDowngradeRoundTrip(t *testing.T) {
	coinbase := tx.New(nil, []tx.Output{{WalletAddress: chainhash.Sum([]byte("addr")), Amount: big.NewInt(1)}}, time.UnixMilli(1000))
	tpl := NewTemplate(nil, 0x1f00ffff, []*tx.Transaction{coinbase}, time.UnixMilli(1000))
	nv, err := tpl.Finalize()
	require.NoError(t, err)

	validated := NewValidated(nv)
	downgraded := validated.Downgrade()

	assert.Equal(t, nv, downgraded)
}

func TestTemplateGenesisHasNoPrevHash(t *testing.T) {
	tpl := NewTemplate(nil, 1, nil, time.UnixMilli(1))
	assert.Equal(t, chainhash.Genesis, tpl.Height)
	assert.Nil(t, tpl.PrevHash)
}

func TestTemplateFollowsPrevHeight(t *testing.T) {
	coinbase := tx.New(nil, []tx.Output{{WalletAddress: chainhash.Sum([]byte("a")), Amount: big.NewInt(1)}}, time.UnixMilli(1))
	genesisTpl := NewTemplate(nil, 1, []*tx.Transaction{coinbase}, time.UnixMilli(1))
	genesis, err := genesisTpl.Finalize()
	require.NoError(t, err)

	next := NewTemplate(&genesis, 1, nil, time.UnixMilli(2))
	assert.Equal(t, chainhash.Height(1), next.Height)
	require.NotNil(t, next.PrevHash)
	assert.Equal(t, genesis.Hash, *next.PrevHash)
}

func TestFinalizeSetsMerkleRoot(t *testing.T) {
	coinbase := tx.New(nil, []tx.Output{{WalletAddress: chainhash.Sum([]byte("a")), Amount: big.NewInt(1)}}, time.UnixMilli(1))
	tpl := NewTemplate(nil, 1, []*tx.Transaction{coinbase}, time.UnixMilli(1))
	nv, err := tpl.Finalize()
	require.NoError(t, err)

	root, err := tx.MerkleRoot([]chainhash.Hash{coinbase.Hash})
	require.NoError(t, err)
	assert.Equal(t, root, nv.Data.TxMerkleRoot)
}

func TestFinalizeRejectsEmptyTransactions(t *testing.T) {
	tpl := NewTemplate(nil, 1, nil, time.UnixMilli(1))
	_, err := tpl.Finalize()
	require.Error(t, err)
}

func TestDataHashIsDeterministic(t *testing.T) {
	d := Data{Height: 1, Nonce: 7, DifficultyTarget: 42, TxMerkleRoot: chainhash.Sum([]byte("root")), Timestamp: time.UnixMilli(5)}
	assert.Equal(t, d.Hash(), d.Hash())
}
