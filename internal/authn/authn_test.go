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

package authn

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonHexMasterKey(t *testing.T) {
	_, err := New("not-hex!!")
	require.Error(t, err)
}

func TestAuthenticateAcceptsMatchingKey(t *testing.T) {
	key := []byte("super-secret-master-key")
	a, err := New(hex.EncodeToString(key))
	require.NoError(t, err)

	assert.True(t, a.Authenticate(key))
}

func TestAuthenticateRejectsWrongKey(t *testing.T) {
	a, err := New(hex.EncodeToString([]byte("the-real-key")))
	require.NoError(t, err)

	assert.False(t, a.Authenticate([]byte("a-wrong-key-entirely")))
}

func TestAuthenticateRejectsDifferentLengthKey(t *testing.T) {
	a, err := New(hex.EncodeToString([]byte("0123456789abcdef")))
	require.NoError(t, err)

	assert.False(t, a.Authenticate([]byte("short")))
}

func TestUnconfiguredAuthenticatorAcceptsAnything(t *testing.T) {
	a, err := New("")
	require.NoError(t, err)

	assert.True(t, a.Authenticate(nil))
	assert.True(t, a.Authenticate([]byte("literally-anything")))
}
