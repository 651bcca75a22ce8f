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

package validate

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/tx"
)

type fakeUtxoResolver struct {
	utxos map[tx.Outpoint]tx.Utxo
}

func (f *fakeUtxoResolver) GetUtxosByOutpoints(ops []tx.Outpoint) ([]tx.Utxo, error) {
	var out []tx.Utxo
	for _, op := range ops {
		if u, ok := f.utxos[op]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newResolver(utxos ...tx.Utxo) *fakeUtxoResolver {
	m := make(map[tx.Outpoint]tx.Utxo, len(utxos))
	for _, u := range utxos {
		m[u.Outpoint] = u
	}
	return &fakeUtxoResolver{utxos: m}
}

func addr(s string) chainhash.Hash { return chainhash.Sum([]byte(s)) }

func TestValidateCoinbaseAllowsEmptyInputs(t *testing.T) {
	v := NewTransactionValidator(newResolver())
	coinbase := tx.New(nil, []tx.Output{{WalletAddress: addr("a"), Amount: big.NewInt(50)}}, time.UnixMilli(1))
	_, err := v.Validate(coinbase)
	require.NoError(t, err)
}

func TestValidateTreatsEmptyInputsAsCoinbase(t *testing.T) {
	v := NewTransactionValidator(newResolver())
	t2 := &tx.Transaction{Inputs: []tx.Input{}, Outputs: []tx.Output{{WalletAddress: addr("a"), Amount: big.NewInt(1)}}}
	_, err := v.Validate(t2)
	require.NoError(t, err) // zero inputs == IsCoinbase() by construction
}

func TestValidateRejectsEmptyOutputs(t *testing.T) {
	v := NewTransactionValidator(newResolver())
	coinbase := tx.New(nil, nil, time.UnixMilli(1))
	_, err := v.Validate(coinbase)
	require.Error(t, err)
}

func TestValidateRejectsNonPositiveOutputAmount(t *testing.T) {
	v := NewTransactionValidator(newResolver())
	coinbase := tx.New(nil, []tx.Output{{WalletAddress: addr("a"), Amount: big.NewInt(0)}}, time.UnixMilli(1))
	_, err := v.Validate(coinbase)
	require.Error(t, err)
}

func TestValidateRejectsUnresolvedInput(t *testing.T) {
	op := tx.Outpoint{TxID: addr("missing"), OutputIndex: 0}
	v := NewTransactionValidator(newResolver())
	spend := &tx.Transaction{
		Inputs:  []tx.Input{{Previous: op}},
		Outputs: []tx.Output{{WalletAddress: addr("b"), Amount: big.NewInt(1)}},
	}
	_, err := v.Validate(spend)
	require.Error(t, err)
}

func TestValidateRejectsOutputsExceedingInputs(t *testing.T) {
	op := tx.Outpoint{TxID: addr("prev"), OutputIndex: 0}
	utxo := tx.Utxo{Outpoint: op, Output: tx.Output{WalletAddress: addr("a"), Amount: big.NewInt(10)}}
	v := NewTransactionValidator(newResolver(utxo))
	spend := &tx.Transaction{
		Inputs:  []tx.Input{{Previous: op}},
		Outputs: []tx.Output{{WalletAddress: addr("b"), Amount: big.NewInt(11)}},
	}
	_, err := v.Validate(spend)
	require.Error(t, err)
}

func TestValidateAcceptsBalancedSpend(t *testing.T) {
	op := tx.Outpoint{TxID: addr("prev"), OutputIndex: 0}
	utxo := tx.Utxo{Outpoint: op, Output: tx.Output{WalletAddress: addr("a"), Amount: big.NewInt(10)}}
	v := NewTransactionValidator(newResolver(utxo))
	spend := &tx.Transaction{
		Inputs:  []tx.Input{{Previous: op}},
		Outputs: []tx.Output{{WalletAddress: addr("b"), Amount: big.NewInt(4)}, {WalletAddress: addr("c"), Amount: big.NewInt(6)}},
	}
	resolved, err := v.Validate(spend)
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
	assert.Equal(t, utxo, resolved[0])
}
