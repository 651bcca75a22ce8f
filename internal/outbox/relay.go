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
	"time"

	"github.com/kon14/taliro/internal/logger"
	"github.com/kon14/taliro/internal/repo"
)

var log = logger.New("outbox")

// DefaultPollInterval is the relay's fixed polling interval (spec §4.7).
const DefaultPollInterval = time.Second

// AppendHandler replays one outbox entry's event, e.g. by issuing the
// corresponding command on the node's command bus. Defined as a function
// type rather than importing internal/dispatcher directly, keeping the
// dependency one-way (dispatcher depends on outbox, not the reverse).
type AppendHandler func(entry Entry) error

// Relay polls the unprocessed tree at a fixed interval and replays each
// entry's event through the dispatcher, moving it to the processed tree
// on success. Failures are logged and retried on the next tick; the entry
// stays unprocessed. This gives at-least-once delivery; idempotency is the
// handler's responsibility (today a documented TODO for HandleBlockAppend,
// same as upstream).
type Relay struct {
	store        *repo.Store
	handle       AppendHandler
	pollInterval time.Duration
	onBacklog    BacklogObserver
}

// NewRelay builds a Relay. handle is invoked once per unprocessed entry,
// in insertion order, and should perform whatever dispatch is required to
// replay the entry's event (spec §4.7).
func NewRelay(store *repo.Store, handle AppendHandler) *Relay {
	return &Relay{store: store, handle: handle, pollInterval: DefaultPollInterval}
}

// WithPollInterval overrides the default 1s poll interval, mainly for tests.
func (r *Relay) WithPollInterval(d time.Duration) *Relay {
	r.pollInterval = d
	return r
}

// BacklogObserver reports how many entries a tick found unprocessed, ahead
// of replaying any of them; used to drive the outbox backlog gauge.
type BacklogObserver func(n int)

// WithBacklogObserver registers a callback invoked once per tick with the
// count of unprocessed entries observed that tick.
func (r *Relay) WithBacklogObserver(fn BacklogObserver) *Relay {
	r.onBacklog = fn
	return r
}

// Run blocks until shutdown is closed, ticking at the configured interval.
func (r *Relay) Run(shutdown <-chan struct{}) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Relay) tick() {
	type pending struct {
		key   []byte
		entry Entry
	}
	var batch []pending

	err := r.store.View(func(u *repo.Unit) error {
		return u.ScanPrefix(repo.TreeOutboxUnprocessed, nil, func(key, value []byte) (bool, error) {
			entry, err := DecodeEntry(value)
			if err != nil {
				log.Error("failed to decode outbox entry, skipping", "err", err)
				return true, nil
			}
			keyCopy := append([]byte(nil), key...)
			batch = append(batch, pending{key: keyCopy, entry: entry})
			return true, nil
		})
	})
	if err != nil {
		log.Error("failed to scan outbox", "err", err)
		return
	}
	if r.onBacklog != nil {
		r.onBacklog(len(batch))
	}

	for _, p := range batch {
		if err := r.handle(p.entry); err != nil {
			log.Error("failed to relay outbox entry, will retry", "id", p.entry.ID.String(), "err", err)
			continue
		}
		p.entry.Processed = true
		encoded, err := EncodeEntry(p.entry)
		if err != nil {
			log.Error("failed to encode processed outbox entry", "err", err)
			continue
		}
		if err := r.store.Update(func(u *repo.Unit) error {
			if err := u.Put(repo.TreeOutboxProcessed, p.key, encoded); err != nil {
				return err
			}
			return u.Delete(repo.TreeOutboxUnprocessed, p.key)
		}); err != nil {
			log.Error("failed to move outbox entry to processed", "id", p.entry.ID.String(), "err", err)
		}
	}
}
