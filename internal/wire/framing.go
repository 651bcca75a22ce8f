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

package wire

import (
	"encoding/binary"
	"io"

	"github.com/kon14/taliro/internal/taliroerr"
)

// MaxPayloadBytes is the maximum allowed request/response payload size
// (spec §6). A zero-length payload is itself a protocol error.
const MaxPayloadBytes = 1_000_000

// WriteFrame writes a 4-byte big-endian length prefix followed by payload.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "zero-length payload")
	}
	if len(payload) > MaxPayloadBytes {
		return taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "payload exceeds maximum frame size")
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return taliroerr.Wrap(err, taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeInternal, "failed to write frame length")
	}
	if _, err := w.Write(payload); err != nil {
		return taliroerr.Wrap(err, taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeInternal, "failed to write frame payload")
	}
	return nil
}

// ReadFrame reads one length-prefixed payload, rejecting zero-length and
// over-sized frames.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, taliroerr.Wrap(err, taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeInternal, "failed to read frame length")
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "zero-length payload")
	}
	if n > MaxPayloadBytes {
		return nil, taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "payload exceeds maximum frame size")
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, taliroerr.Wrap(err, taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeInternal, "failed to read frame payload")
	}
	return payload, nil
}
