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

// Package chainhash defines the 32-byte opaque hash and the monotonic block
// height used throughout the node, following the value-type conventions of
// klaytn's common.Hash.
package chainhash

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/kon14/taliro/internal/taliroerr"
	"golang.org/x/crypto/sha3"
)

// Size is the fixed byte length of a Hash.
const Size = 32

// Hash is an opaque 32-byte value used as a block id, transaction id,
// merkle root, or wallet address.
type Hash [Size]byte

// Zero is the all-zero hash, used as the "no previous block" sentinel is
// represented instead by a nil *Hash at the call sites that need it; Zero
// itself is a legitimate content hash and must never be treated specially.
var Zero = Hash{}

// New validates the length of b and returns the Hash it represents.
func New(b []byte) (Hash, error) {
	var h Hash
	if len(b) != Size {
		return h, taliroerr.New(taliroerr.GroupCryptographic, taliroerr.KindHashLengthMismatch, taliroerr.EnvelopeBadRequest, "hash must be 32 bytes")
	}
	copy(h[:], b)
	return h, nil
}

// FromHex parses a lowercase-or-mixed-case hex string (64 chars, optional
// 0x prefix) into a Hash, rejecting length and alphabet mismatches.
func FromHex(s string) (Hash, error) {
	var h Hash
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s) != Size*2 {
		return h, taliroerr.New(taliroerr.GroupCryptographic, taliroerr.KindHashLengthMismatch, taliroerr.EnvelopeBadRequest, "hash hex must be 64 characters")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, taliroerr.Wrap(err, taliroerr.GroupCryptographic, taliroerr.KindHashConversionFailed, taliroerr.EnvelopeBadRequest, "invalid hex alphabet")
	}
	copy(h[:], b)
	return h, nil
}

// Sum returns the content hash of the given bytes using Keccak-256, the same
// hash family klaytn's common/types use for block and transaction hashing.
func Sum(b []byte) Hash {
	var h Hash
	d := sha3.NewLegacyKeccak256()
	d.Write(b)
	d.Sum(h[:0])
	return h
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

func (h Hash) IsZero() bool { return h == Zero }

// Height is a monotonic, unsigned block height; genesis is height 0.
type Height uint64

const Genesis Height = 0

// Next returns h+1.
func (h Height) Next() Height { return h + 1 }

// BigEndianBytes serializes the height as an 8-byte big-endian key, used for
// ordered range scans over the heights tree (spec §3, §6).
func (h Height) BigEndianBytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(h))
	return b[:]
}

// HeightFromBigEndianBytes is the inverse of BigEndianBytes.
func HeightFromBigEndianBytes(b []byte) (Height, error) {
	if len(b) != 8 {
		return 0, taliroerr.New(taliroerr.GroupCryptographic, taliroerr.KindDecodingFailed, taliroerr.EnvelopeInternal, "height key must be 8 bytes")
	}
	return Height(binary.BigEndian.Uint64(b)), nil
}
