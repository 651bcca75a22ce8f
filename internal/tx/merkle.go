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

package tx

import (
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/taliroerr"
)

// MerkleRoot computes the root of the ordered sequence of transaction
// hashes by pairwise hashing; when a level has an odd count and is not the
// root itself, the last element is duplicated (spec §3). Input order is
// significant and must be preserved.
func MerkleRoot(hashes []chainhash.Hash) (chainhash.Hash, error) {
	if len(hashes) == 0 {
		return chainhash.Hash{}, taliroerr.New(taliroerr.GroupBlockValidation, taliroerr.KindNoTransactions, taliroerr.EnvelopeBadRequest, "cannot compute merkle root of zero transactions")
	}
	level := make([]chainhash.Hash, len(hashes))
	copy(level, hashes)
	for len(level) > 1 {
		next := make([]chainhash.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, hashPair(left, right))
		}
		level = next
	}
	return level[0], nil
}

func hashPair(left, right chainhash.Hash) chainhash.Hash {
	buf := make([]byte, 0, chainhash.Size*2)
	buf = append(buf, left.Bytes()...)
	buf = append(buf, right.Bytes()...)
	return chainhash.Sum(buf)
}
