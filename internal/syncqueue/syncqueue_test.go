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

package syncqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/chainhash"
)

type fakePusher struct {
	pushed []block.NonValidated
}

func (f *fakePusher) PushBlock(nv block.NonValidated) { f.pushed = append(f.pushed, nv) }

func TestRequestBlockSendsOnFirstCall(t *testing.T) {
	var requested []chainhash.Height
	q := New(func(h chainhash.Height, peer string) { requested = append(requested, h) }, &fakePusher{})

	q.RequestBlock(5, "peerA")
	require.Len(t, requested, 1)
	assert.True(t, q.IsInProgress(5))
}

func TestRequestBlockDeduplicatesInProgress(t *testing.T) {
	var requested []chainhash.Height
	q := New(func(h chainhash.Height, peer string) { requested = append(requested, h) }, &fakePusher{})

	q.RequestBlock(5, "peerA")
	q.RequestBlock(5, "peerB")
	assert.Len(t, requested, 1, "a second request for an in-progress height must not re-send")
}

func TestRequestBlockSkipsAlreadyCompleted(t *testing.T) {
	var requested []chainhash.Height
	pusher := &fakePusher{}
	q := New(func(h chainhash.Height, peer string) { requested = append(requested, h) }, pusher)

	q.RequestBlock(5, "peerA")
	q.OnBlockReceived(block.NonValidated{Data: block.Data{Height: 5}}, "peerA")

	q.RequestBlock(5, "peerB")
	assert.Len(t, requested, 1, "a completed height must never be re-requested")
}

func TestOnBlockReceivedPushesToProcessor(t *testing.T) {
	pusher := &fakePusher{}
	q := New(func(h chainhash.Height, peer string) {}, pusher)

	q.RequestBlock(7, "peerA")
	nv := block.NonValidated{Data: block.Data{Height: 7}}
	q.OnBlockReceived(nv, "peerA")

	require.Len(t, pusher.pushed, 1)
	assert.Equal(t, chainhash.Height(7), pusher.pushed[0].Data.Height)
	assert.False(t, q.IsInProgress(7))
}

func TestOnBlockReceivedDropsLateDuplicate(t *testing.T) {
	pusher := &fakePusher{}
	q := New(func(h chainhash.Height, peer string) {}, pusher)

	nv := block.NonValidated{Data: block.Data{Height: 3}}
	q.OnBlockReceived(nv, "peerA")
	q.OnBlockReceived(nv, "peerB")

	assert.Len(t, pusher.pushed, 1, "a duplicate delivery after completion must not be forwarded twice")
}
