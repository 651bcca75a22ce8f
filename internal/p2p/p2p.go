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

// Package p2p is the network surface the core consumes (spec §4.12):
// publishing gossip/request events outward, and decoding inbound bytes
// into the shapes the dispatcher's P2P commands expect. Concrete
// transport, discovery, and peer storage are out of scope (spec §1); this
// package supplies a minimal TCP transport so the contract has a runnable
// implementation, not a specification of the production overlay network.
package p2p

import (
	"encoding/binary"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/wire"
)

// AddPeerResult mirrors dispatcher.AddPeerResult; duplicated here (rather
// than imported) so this package has no dependency on internal/dispatcher,
// keeping the direction of the consumed-contract edge one-way as spec §9's
// cyclic-reference-sites note requires: network code publishes outward and
// is invoked by the node, never the other way around.
type AddPeerResult int

const (
	AddPeerPending AddPeerResult = iota
	AddPeerAlreadyConnected
	AddPeerInvalidAddress
	AddPeerFailedToDialPeer
)

// GossipEvent is the one gossip topic's payload (spec §6): today only
// BroadcastNewBlock exists, tagged so a second variant has somewhere to go.
type GossipEvent struct {
	Kind  GossipKind
	Block block.NonValidated
}

type GossipKind byte

const GossipKindBroadcastNewBlock GossipKind = 1

// NewBroadcastNewBlockEvent wraps nv as the one gossip event variant.
func NewBroadcastNewBlockEvent(nv block.NonValidated) GossipEvent {
	return GossipEvent{Kind: GossipKindBroadcastNewBlock, Block: nv}
}

// EncodeGossipEvent renders a GossipEvent into the stable binary layout
// used on the wire.
func EncodeGossipEvent(e GossipEvent) []byte {
	buf := []byte{byte(e.Kind)}
	return append(buf, wire.EncodeBlock(e.Block)...)
}

// DecodeGossipEvent is the inverse of EncodeGossipEvent.
func DecodeGossipEvent(b []byte) (GossipEvent, error) {
	if len(b) < 1 {
		return GossipEvent{}, errEmptyGossipEvent
	}
	kind := GossipKind(b[0])
	nv, err := wire.DecodeBlock(b[1:])
	if err != nil {
		return GossipEvent{}, err
	}
	return GossipEvent{Kind: kind, Block: nv}, nil
}

// NetworkHandle is the narrow surface the node holds once Bootstrapped
// (spec §4.11): publish is non-blocking and success does not imply
// delivery, matching spec §4.12.
type NetworkHandle interface {
	PublishNetworkEvent(event GossipEvent) error
	SendRequest(peer string, payload []byte) error
	SelfInfo() (identity string, addrs []string)
	Peers() []string
	AddPeer(addr string) (AddPeerResult, error)
	Close() error
}

// Request/response payload kinds (spec §6 wire protocol).
type RequestKind byte

const (
	RequestKindGetBlockchainTip RequestKind = iota + 1
	RequestKindGetBlockByHeight
	RequestKindGetBlocksByHeightRange
)

// EncodeGetBlockByHeightRequest renders a GetBlockByHeight request.
func EncodeGetBlockByHeightRequest(h chainhash.Height) []byte {
	buf := []byte{byte(RequestKindGetBlockByHeight)}
	return append(buf, h.BigEndianBytes()...)
}

// DecodeGetBlockByHeightRequest is the inverse of
// EncodeGetBlockByHeightRequest, failing if payload is not that request
// kind.
func DecodeGetBlockByHeightRequest(payload []byte) (chainhash.Height, error) {
	if len(payload) != 9 || RequestKind(payload[0]) != RequestKindGetBlockByHeight {
		return 0, errNotGetBlockByHeightRequest
	}
	return chainhash.HeightFromBigEndianBytes(payload[1:])
}

// PeekResponseKind reads the leading RequestKind tag every response carries,
// letting a single OnResponse callback demultiplex replies to the three
// request kinds arriving over one connection.
func PeekResponseKind(payload []byte) (RequestKind, error) {
	if len(payload) < 1 {
		return 0, errEmptyResponse
	}
	return RequestKind(payload[0]), nil
}

// EncodeGetBlockByHeightResponse renders the response to a GetBlockByHeight
// request: a kind tag, a present flag, and the block bytes if present.
func EncodeGetBlockByHeightResponse(nv *block.NonValidated) []byte {
	if nv == nil {
		return []byte{byte(RequestKindGetBlockByHeight), 0}
	}
	buf := []byte{byte(RequestKindGetBlockByHeight), 1}
	return append(buf, wire.EncodeBlock(*nv)...)
}

// DecodeGetBlockByHeightResponse is the inverse of
// EncodeGetBlockByHeightResponse.
func DecodeGetBlockByHeightResponse(payload []byte) (*block.NonValidated, error) {
	if len(payload) < 2 || RequestKind(payload[0]) != RequestKindGetBlockByHeight {
		return nil, errNotGetBlockByHeightResponse
	}
	if payload[1] == 0 {
		return nil, nil
	}
	nv, err := wire.DecodeBlock(payload[2:])
	if err != nil {
		return nil, err
	}
	return &nv, nil
}

// EncodeGetBlockchainTipRequest renders a GetBlockchainTip request; it
// carries no body, only the kind byte.
func EncodeGetBlockchainTipRequest() []byte {
	return []byte{byte(RequestKindGetBlockchainTip)}
}

// DecodeGetBlockchainTipRequest validates that payload is a
// GetBlockchainTip request.
func DecodeGetBlockchainTipRequest(payload []byte) error {
	if len(payload) != 1 || RequestKind(payload[0]) != RequestKindGetBlockchainTip {
		return errNotGetBlockchainTipRequest
	}
	return nil
}

// EncodeGetBlockchainTipResponse renders the tip hash/height pair, or a
// zero-present flag if the chain has no tip yet (pre-genesis).
func EncodeGetBlockchainTipResponse(hash *chainhash.Hash, height chainhash.Height) []byte {
	if hash == nil {
		return []byte{byte(RequestKindGetBlockchainTip), 0}
	}
	buf := make([]byte, 0, 2+chainhash.Size+8)
	buf = append(buf, byte(RequestKindGetBlockchainTip), 1)
	buf = append(buf, hash.Bytes()...)
	buf = append(buf, height.BigEndianBytes()...)
	return buf
}

// DecodeGetBlockchainTipResponse is the inverse of
// EncodeGetBlockchainTipResponse.
func DecodeGetBlockchainTipResponse(payload []byte) (*chainhash.Hash, chainhash.Height, error) {
	if len(payload) < 2 || RequestKind(payload[0]) != RequestKindGetBlockchainTip {
		return nil, 0, errNotGetBlockchainTipResponse
	}
	if payload[1] == 0 {
		return nil, 0, nil
	}
	if len(payload) != 2+chainhash.Size+8 {
		return nil, 0, errNotGetBlockchainTipResponse
	}
	hash, err := chainhash.New(payload[2 : 2+chainhash.Size])
	if err != nil {
		return nil, 0, err
	}
	height, err := chainhash.HeightFromBigEndianBytes(payload[2+chainhash.Size:])
	if err != nil {
		return nil, 0, err
	}
	return &hash, height, nil
}

// EncodeGetBlocksByHeightRangeRequest renders a [lo, hi] inclusive range
// request.
func EncodeGetBlocksByHeightRangeRequest(lo, hi chainhash.Height) []byte {
	buf := []byte{byte(RequestKindGetBlocksByHeightRange)}
	buf = append(buf, lo.BigEndianBytes()...)
	buf = append(buf, hi.BigEndianBytes()...)
	return buf
}

// DecodeGetBlocksByHeightRangeRequest is the inverse of
// EncodeGetBlocksByHeightRangeRequest.
func DecodeGetBlocksByHeightRangeRequest(payload []byte) (lo, hi chainhash.Height, err error) {
	if len(payload) != 17 || RequestKind(payload[0]) != RequestKindGetBlocksByHeightRange {
		return 0, 0, errNotGetBlocksByHeightRangeRequest
	}
	lo, err = chainhash.HeightFromBigEndianBytes(payload[1:9])
	if err != nil {
		return 0, 0, err
	}
	hi, err = chainhash.HeightFromBigEndianBytes(payload[9:17])
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// EncodeGetBlocksByHeightRangeResponse renders a kind tag, a count, and
// each block's own length-prefixed wire encoding, so the reader need not
// guess individual block boundaries.
func EncodeGetBlocksByHeightRangeResponse(blocks []*block.NonValidated) []byte {
	buf := []byte{byte(RequestKindGetBlocksByHeightRange)}
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(blocks)))
	buf = append(buf, countBuf[:]...)
	for _, nv := range blocks {
		enc := wire.EncodeBlock(*nv)
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(enc)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, enc...)
	}
	return buf
}

// DecodeGetBlocksByHeightRangeResponse is the inverse of
// EncodeGetBlocksByHeightRangeResponse.
func DecodeGetBlocksByHeightRangeResponse(payload []byte) ([]block.NonValidated, error) {
	if len(payload) < 5 || RequestKind(payload[0]) != RequestKindGetBlocksByHeightRange {
		return nil, errNotGetBlocksByHeightRangeResponse
	}
	count := binary.BigEndian.Uint32(payload[1:5])
	payload = payload[5:]
	blocks := make([]block.NonValidated, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(payload) < 4 {
			return nil, errNotGetBlocksByHeightRangeResponse
		}
		n := binary.BigEndian.Uint32(payload[:4])
		payload = payload[4:]
		if uint32(len(payload)) < n {
			return nil, errNotGetBlocksByHeightRangeResponse
		}
		nv, err := wire.DecodeBlock(payload[:n])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, nv)
		payload = payload[n:]
	}
	return blocks, nil
}
