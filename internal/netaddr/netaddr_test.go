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

package netaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/taliroerr"
)

func TestValidateRejectsEmptyAddress(t *testing.T) {
	err := Validate("")
	require.Error(t, err)
	assert.True(t, taliroerr.Is(err, taliroerr.KindInvalidMultiaddr))
}

func TestValidateRejectsAddressMissingLeadingSlash(t *testing.T) {
	err := Validate("ip4/127.0.0.1/tcp/4001")
	require.Error(t, err)
	assert.True(t, taliroerr.Is(err, taliroerr.KindInvalidMultiaddr))
}

func TestValidateRejectsOddSegmentCount(t *testing.T) {
	err := Validate("/ip4/127.0.0.1/tcp")
	require.Error(t, err)
}

func TestValidateRejectsMissingP2PSegment(t *testing.T) {
	err := Validate("/ip4/127.0.0.1/tcp/4001")
	require.Error(t, err)
	assert.True(t, taliroerr.Is(err, taliroerr.KindInvalidMultiaddr))
}

func TestValidateRejectsEmptyPeerIDValue(t *testing.T) {
	err := Validate("/ip4/127.0.0.1/tcp/4001/p2p/")
	require.Error(t, err)
}

func TestValidateAcceptsWellFormedAddress(t *testing.T) {
	err := Validate("/ip4/127.0.0.1/tcp/4001/p2p/QmPeerID")
	assert.NoError(t, err)
}

func TestPeerIDExtractsValue(t *testing.T) {
	id, err := PeerID("/ip4/127.0.0.1/tcp/4001/p2p/QmPeerID")
	require.NoError(t, err)
	assert.Equal(t, "QmPeerID", id)
}

func TestPeerIDFailsWithoutP2PSegment(t *testing.T) {
	_, err := PeerID("/ip4/127.0.0.1/tcp/4001")
	require.Error(t, err)
}
