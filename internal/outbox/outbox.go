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

// Package outbox implements the transactional outbox (spec §4.7): entries
// are inserted in the same atomic unit as the blockchain append they
// describe, and moved to the processed tree only after a relay delivery
// succeeds.
package outbox

import (
	"encoding/binary"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/taliroerr"
	"github.com/kon14/taliro/internal/wire"
)

// EventType names the kind of payload an Entry carries. Only one exists
// today; the type stays explicit so a second event variant has somewhere
// to go without reshaping Entry.
type EventType string

const EventBlockchainAppendBlock EventType = "blockchain_append_block"

// Entry is one durable, at-least-once record of a post-commit side effect.
type Entry struct {
	ID        uuid.UUID
	Type      EventType
	Block     block.NonValidated // only populated payload today
	CreatedAt time.Time
	Processed bool
}

// NewAppendBlockEntry builds the (today, only) outbox event: a block that
// was just committed to the blocks/heights trees and must eventually be
// broadcast to peers.
func NewAppendBlockEntry(b block.NonValidated) Entry {
	return Entry{
		ID:        uuid.NewV4(),
		Type:      EventBlockchainAppendBlock,
		Block:     b,
		CreatedAt: time.Now().UTC(),
	}
}

// Key returns the entry's logical identity in the "<event_type>:<uuid>"
// shape described by spec §6.
func (e Entry) Key() string {
	return string(e.Type) + ":" + e.ID.String()
}

// StoreKey returns the physical tree key for this entry: a CreatedAt
// timestamp prefix followed by the uuid, so that a prefix scan of either
// outbox tree visits entries in insertion order. The relay loop depends on
// this ordering (spec §4.7 "in insertion order"); a plain uuid-v4 key,
// despite matching the key string format, would scan in random order.
func (e Entry) StoreKey() []byte {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(e.CreatedAt.UnixNano()))
	out := make([]byte, 0, 8+16)
	out = append(out, ts[:]...)
	out = append(out, e.ID.Bytes()...)
	return out
}

// EncodeEntry renders an Entry into the stable binary layout.
func EncodeEntry(e Entry) ([]byte, error) {
	var buf []byte
	buf = append(buf, e.ID.Bytes()...)
	buf = append(buf, byte(len(e.Type)))
	buf = append(buf, []byte(e.Type)...)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(e.CreatedAt.UnixNano()))
	buf = append(buf, ts[:]...)
	if e.Processed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	blockBytes := wire.EncodeBlock(e.Block)
	var blen [4]byte
	binary.BigEndian.PutUint32(blen[:], uint32(len(blockBytes)))
	buf = append(buf, blen[:]...)
	buf = append(buf, blockBytes...)
	return buf, nil
}

// DecodeEntry is the inverse of EncodeEntry.
func DecodeEntry(b []byte) (Entry, error) {
	if len(b) < 16+1 {
		return Entry{}, taliroerr.New(taliroerr.GroupCryptographic, taliroerr.KindDecodingFailed, taliroerr.EnvelopeInternal, "truncated outbox entry")
	}
	off := 0
	id, err := uuid.FromBytes(b[off : off+16])
	if err != nil {
		return Entry{}, taliroerr.Wrap(err, taliroerr.GroupCryptographic, taliroerr.KindDecodingFailed, taliroerr.EnvelopeInternal, "invalid outbox entry id")
	}
	off += 16
	typeLen := int(b[off])
	off++
	if len(b) < off+typeLen+8+1+4 {
		return Entry{}, taliroerr.New(taliroerr.GroupCryptographic, taliroerr.KindDecodingFailed, taliroerr.EnvelopeInternal, "truncated outbox entry")
	}
	eventType := EventType(b[off : off+typeLen])
	off += typeLen
	createdAtRaw := binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	processed := b[off] == 1
	off++
	blen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if len(b) < off+blen {
		return Entry{}, taliroerr.New(taliroerr.GroupCryptographic, taliroerr.KindDecodingFailed, taliroerr.EnvelopeInternal, "truncated outbox entry block payload")
	}
	nv, err := wire.DecodeBlock(b[off : off+blen])
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:        id,
		Type:      eventType,
		Block:     nv,
		CreatedAt: time.Unix(0, int64(createdAtRaw)).UTC(),
		Processed: processed,
	}, nil
}
