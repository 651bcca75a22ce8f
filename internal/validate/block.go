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
	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/blockchain"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/taliroerr"
	"github.com/kon14/taliro/internal/tx"
)

// TipReader is the read-only slice of *blockchain.Manager the block
// validator depends on.
type TipReader interface {
	GetTipInfo() (*blockchain.TipInfo, error)
	HasKnownBlock(hash chainhash.Hash) (bool, error)
}

// BlockValidator runs the structural and content rules of spec §4.3.
// Outside of tests, its Validate method is the only code in this codebase
// that obtains a block.Validated.
type BlockValidator struct {
	tip TipReader
	tx  *TransactionValidator
}

func NewBlockValidator(tip TipReader, txValidator *TransactionValidator) *BlockValidator {
	return &BlockValidator{tip: tip, tx: txValidator}
}

// Validate runs both phases against nv and, on success, returns the
// block.Validated typestate value. This is the sole constructor of
// block.Validated outside of tests.
func (v *BlockValidator) Validate(nv block.NonValidated) (block.Validated, error) {
	if err := v.validateStructural(nv); err != nil {
		return block.Validated{}, err
	}
	if err := v.validateContent(nv); err != nil {
		return block.Validated{}, err
	}
	return block.NewValidated(nv), nil
}

func (v *BlockValidator) validateStructural(nv block.NonValidated) error {
	if len(nv.Data.Transactions) == 0 {
		return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindNoTransactions, taliroerr.EnvelopeBadRequest, "block has no transactions")
	}

	seen := make(map[chainhash.Hash]struct{}, len(nv.Data.Transactions))
	coinbaseCount := 0
	hashes := make([]chainhash.Hash, len(nv.Data.Transactions))
	for i, t := range nv.Data.Transactions {
		if _, dup := seen[t.Hash]; dup {
			return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindDuplicateTransaction, taliroerr.EnvelopeBadRequest, "duplicate transaction hash in block")
		}
		seen[t.Hash] = struct{}{}
		if t.IsCoinbase() {
			coinbaseCount++
		}
		hashes[i] = t.Hash
	}
	if coinbaseCount > 1 {
		return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindMultipleCoinbase, taliroerr.EnvelopeBadRequest, "block has more than one coinbase transaction")
	}

	root, err := tx.MerkleRoot(hashes)
	if err != nil {
		return err
	}
	if root != nv.Data.TxMerkleRoot {
		return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindInvalidMerkleRoot, taliroerr.EnvelopeBadRequest, "merkle root does not match transactions")
	}

	// Timestamp sanity and block-size limits are placeholder hooks (spec §4.3).

	return nil
}

func (v *BlockValidator) validateContent(nv block.NonValidated) error {
	known, err := v.tip.HasKnownBlock(nv.Hash)
	if err != nil {
		return err
	}
	if known {
		return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindBlockAlreadyKnown, taliroerr.EnvelopeConflict, "block already known")
	}

	tip, err := v.tip.GetTipInfo()
	if err != nil {
		return err
	}

	if tip == nil {
		if nv.Data.PrevHash != nil {
			return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindContinuityMismatch, taliroerr.EnvelopeConflict, "genesis block must not reference a previous hash")
		}
		// Genesis special case: accepted without per-tx validation (spec §4.3).
		return nil
	}

	if nv.Data.PrevHash == nil {
		return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindGenesisAlreadyExists, taliroerr.EnvelopeConflict, "genesis already exists")
	}
	if *nv.Data.PrevHash != tip.Hash {
		return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindContinuityMismatch, taliroerr.EnvelopeConflict, "block's prev_hash does not match the current tip")
	}

	consumed := make(map[tx.Outpoint]struct{})
	for _, t := range nv.Data.Transactions {
		if _, err := v.tx.Validate(t); err != nil {
			return err
		}
		for _, in := range t.Inputs {
			if _, dup := consumed[in.Previous]; dup {
				return taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindDoubleSpending, taliroerr.EnvelopeConflict, "two transactions in this block consume the same outpoint")
			}
			consumed[in.Previous] = struct{}{}
		}
	}
	return nil
}
