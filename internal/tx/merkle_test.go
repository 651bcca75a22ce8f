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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/chainhash"
)

func TestMerkleRootRejectsEmptyInput(t *testing.T) {
	_, err := MerkleRoot(nil)
	require.Error(t, err)
}

func TestMerkleRootSingleElement(t *testing.T) {
	h := chainhash.Sum([]byte("only"))
	root, err := MerkleRoot([]chainhash.Hash{h})
	require.NoError(t, err)
	assert.Equal(t, h, root)
}

func TestMerkleRootDuplicatesOddTail(t *testing.T) {
	a := chainhash.Sum([]byte("a"))
	b := chainhash.Sum([]byte("b"))
	c := chainhash.Sum([]byte("c"))

	threeElem, err := MerkleRoot([]chainhash.Hash{a, b, c})
	require.NoError(t, err)

	fourElem, err := MerkleRoot([]chainhash.Hash{a, b, c, c})
	require.NoError(t, err)

	assert.Equal(t, fourElem, threeElem, "an odd trailing element must be implicitly duplicated")
}

func TestMerkleRootOrderSensitive(t *testing.T) {
	a := chainhash.Sum([]byte("a"))
	b := chainhash.Sum([]byte("b"))

	ab, err := MerkleRoot([]chainhash.Hash{a, b})
	require.NoError(t, err)
	ba, err := MerkleRoot([]chainhash.Hash{b, a})
	require.NoError(t, err)

	assert.NotEqual(t, ab, ba)
}

func TestMerkleRootDeterministic(t *testing.T) {
	hashes := []chainhash.Hash{
		chainhash.Sum([]byte("1")),
		chainhash.Sum([]byte("2")),
		chainhash.Sum([]byte("3")),
		chainhash.Sum([]byte("4")),
		chainhash.Sum([]byte("5")),
	}
	r1, err := MerkleRoot(hashes)
	require.NoError(t, err)
	r2, err := MerkleRoot(hashes)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
