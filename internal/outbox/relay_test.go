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

package outbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kon14/taliro/internal/repo"
)

func openStore(t *testing.T) *repo.Store {
	t.Helper()
	s, err := repo.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insertUnprocessed(t *testing.T, store *repo.Store, entry Entry) {
	t.Helper()
	encoded, err := EncodeEntry(entry)
	require.NoError(t, err)
	require.NoError(t, store.Update(func(u *repo.Unit) error {
		return u.Put(repo.TreeOutboxUnprocessed, entry.StoreKey(), encoded)
	}))
}

func TestRelayTickMovesSuccessfulEntryToProcessed(t *testing.T) {
	store := openStore(t)
	entry := NewAppendBlockEntry(sampleBlock(t))
	insertUnprocessed(t, store, entry)

	var replayed []string
	relay := NewRelay(store, func(e Entry) error {
		replayed = append(replayed, e.ID.String())
		return nil
	})
	relay.tick()

	assert.Equal(t, []string{entry.ID.String()}, replayed)

	var stillUnprocessed int
	require.NoError(t, store.View(func(u *repo.Unit) error {
		return u.ScanPrefix(repo.TreeOutboxUnprocessed, nil, func(key, value []byte) (bool, error) {
			stillUnprocessed++
			return true, nil
		})
	}))
	assert.Zero(t, stillUnprocessed)

	var processedCount int
	require.NoError(t, store.View(func(u *repo.Unit) error {
		return u.ScanPrefix(repo.TreeOutboxProcessed, nil, func(key, value []byte) (bool, error) {
			processedCount++
			return true, nil
		})
	}))
	assert.Equal(t, 1, processedCount)
}

func TestRelayTickLeavesFailedEntryUnprocessed(t *testing.T) {
	store := openStore(t)
	entry := NewAppendBlockEntry(sampleBlock(t))
	insertUnprocessed(t, store, entry)

	relay := NewRelay(store, func(e Entry) error { return assert.AnError })
	relay.tick()

	var stillUnprocessed int
	require.NoError(t, store.View(func(u *repo.Unit) error {
		return u.ScanPrefix(repo.TreeOutboxUnprocessed, nil, func(key, value []byte) (bool, error) {
			stillUnprocessed++
			return true, nil
		})
	}))
	assert.Equal(t, 1, stillUnprocessed, "a failed replay must retry on the next tick")
}

func TestRelayWithBacklogObserverReportsCount(t *testing.T) {
	store := openStore(t)
	insertUnprocessed(t, store, NewAppendBlockEntry(sampleBlock(t)))
	insertUnprocessed(t, store, NewAppendBlockEntry(sampleBlock(t)))

	var mu sync.Mutex
	var observed int
	relay := NewRelay(store, func(e Entry) error { return nil }).
		WithBacklogObserver(func(n int) {
			mu.Lock()
			observed = n
			mu.Unlock()
		})
	relay.tick()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, observed)
}
