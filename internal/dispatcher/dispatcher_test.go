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

package dispatcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/blockchain"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/tx"
)

func fakeHandlers() Handlers {
	return Handlers{
		GetTipInfo: func() (*blockchain.TipInfo, error) {
			return &blockchain.TipInfo{Hash: chainhash.Sum([]byte("tip")), Height: 3}, nil
		},
		PlaceTransaction: func(t *tx.Transaction) *tx.Transaction { return t },
		RequestNodeShutdown: func() {
		},
	}
}

func TestDispatcherRunServesSubmittedCommand(t *testing.T) {
	d := New()
	d.SetHandlers(fakeHandlers())
	shutdown := make(chan struct{})
	done := make(chan struct{})
	go func() {
		d.Run(shutdown)
		close(done)
	}()

	tip, err := GetTipInfo(d)
	require.NoError(t, err)
	require.NotNil(t, tip)
	assert.Equal(t, chainhash.Height(3), tip.Height)

	close(shutdown)
	<-done
}

func TestRequestNodeShutdownStopsTheLoop(t *testing.T) {
	d := New()
	d.SetHandlers(fakeHandlers())
	shutdown := make(chan struct{})
	done := make(chan struct{})
	go func() {
		d.Run(shutdown)
		close(done)
	}()

	RequestNodeShutdown(d)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after RequestNodeShutdown")
	}
}

func TestOnCommandObservesEveryDispatchedCommand(t *testing.T) {
	d := New()
	d.SetHandlers(fakeHandlers())

	var mu sync.Mutex
	var names []string
	d.OnCommand(func(name string) {
		mu.Lock()
		names = append(names, name)
		mu.Unlock()
	})

	shutdown := make(chan struct{})
	done := make(chan struct{})
	go func() {
		d.Run(shutdown)
		close(done)
	}()

	_, err := GetTipInfo(d)
	require.NoError(t, err)
	close(shutdown)
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, names, 1)
	assert.Contains(t, names[0], "getTipInfoCmd")
}

func TestResponderAwaitBlocksUntilFulfilled(t *testing.T) {
	resp := newResponder[int]()
	go func() { resp.fulfill(42, nil) }()
	v, err := resp.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
