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

// Package validate implements the transaction and block validators
// (spec §4.3, §4.4): the only path that may turn a block.NonValidated into
// a block.Validated.
package validate

import (
	"math/big"

	"github.com/kon14/taliro/internal/taliroerr"
	"github.com/kon14/taliro/internal/tx"
)

// UtxoResolver resolves a batch of outpoints to whatever UTXOs currently
// exist for them, silently omitting any that are already spent or unknown.
// Coinbase transactions never call it (no inputs).
type UtxoResolver interface {
	GetUtxosByOutpoints(ops []tx.Outpoint) ([]tx.Utxo, error)
}

// TransactionValidator runs the rules of spec §4.4 against live UTXO state.
// Signature verification is reserved in the shape but not yet enforced
// (spec §1 Non-goals).
type TransactionValidator struct {
	utxos UtxoResolver
}

func NewTransactionValidator(utxos UtxoResolver) *TransactionValidator {
	return &TransactionValidator{utxos: utxos}
}

// Validate runs the ordered rule set against t and returns the resolved
// input UTXOs on success. The block validator discards them and builds
// its in-block double-spend set from t.Inputs.
func (v *TransactionValidator) Validate(t *tx.Transaction) ([]tx.Utxo, error) {
	if !t.IsCoinbase() && len(t.Inputs) == 0 {
		return nil, taliroerr.New(taliroerr.GroupTransactionValidation, taliroerr.KindEmptyInputs, taliroerr.EnvelopeBadRequest, "transaction has no inputs")
	}
	if len(t.Outputs) == 0 {
		return nil, taliroerr.New(taliroerr.GroupTransactionValidation, taliroerr.KindEmptyOutputs, taliroerr.EnvelopeBadRequest, "transaction has no outputs")
	}

	// Signature verification is reserved in the shape but not enforced.

	var utxos []tx.Utxo
	if !t.IsCoinbase() {
		ops := make([]tx.Outpoint, len(t.Inputs))
		for i, in := range t.Inputs {
			ops[i] = in.Previous
		}
		resolved, err := v.utxos.GetUtxosByOutpoints(ops)
		if err != nil {
			return nil, err
		}
		if len(resolved) != len(ops) {
			return nil, taliroerr.New(taliroerr.GroupTransactionValidation, taliroerr.KindUtxoNotFound, taliroerr.EnvelopeConflict, "one or more inputs do not resolve to a UTXO")
		}
		utxos = resolved
	}

	for _, out := range t.Outputs {
		if out.Amount == nil || out.Amount.Sign() <= 0 {
			return nil, taliroerr.New(taliroerr.GroupTransactionValidation, taliroerr.KindInvalidOutputAmount, taliroerr.EnvelopeBadRequest, "output amount must be strictly positive")
		}
	}

	if !t.IsCoinbase() {
		inputTotal := big.NewInt(0)
		for _, u := range utxos {
			amt := u.Output.Amount
			if amt == nil {
				amt = big.NewInt(0)
			}
			inputTotal.Add(inputTotal, amt)
		}
		outputTotal := big.NewInt(0)
		for _, out := range t.Outputs {
			outputTotal.Add(outputTotal, out.Amount)
		}
		if outputTotal.Cmp(inputTotal) > 0 {
			return nil, taliroerr.New(taliroerr.GroupTransactionValidation, taliroerr.KindOutputsExceedInputs, taliroerr.EnvelopeBadRequest, "sum of outputs exceeds sum of inputs")
		}
	}

	return utxos, nil
}
