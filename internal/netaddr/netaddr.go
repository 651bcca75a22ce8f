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

// Package netaddr validates peer multiaddr strings (spec §6): non-empty,
// parseable into "/protocol/value" segment pairs, with a present p2p
// peer-id segment. No multiaddr-shaped library surfaced in the retrieval
// pack, so this is a deliberately narrow hand-rolled parser rather than a
// stand-in for go-multiaddr (see DESIGN.md).
package netaddr

import (
	"strings"

	"github.com/kon14/taliro/internal/taliroerr"
)

// PeerIDProtocol is the multiaddr protocol segment carrying the peer id.
const PeerIDProtocol = "p2p"

// Validate parses addr into "/protocol/value" segment pairs and requires a
// present p2p segment with a non-empty value (spec §6).
func Validate(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return invalidAddr(addr, "empty address")
	}
	segments, err := parseSegments(addr)
	if err != nil {
		return err
	}
	for _, s := range segments {
		if s.protocol == PeerIDProtocol {
			if s.value == "" {
				return invalidAddr(addr, "p2p segment has no peer id value")
			}
			return nil
		}
	}
	return invalidAddr(addr, "missing p2p peer-id segment")
}

// PeerID extracts the p2p segment's value from an already-validated addr.
func PeerID(addr string) (string, error) {
	segments, err := parseSegments(addr)
	if err != nil {
		return "", err
	}
	for _, s := range segments {
		if s.protocol == PeerIDProtocol {
			return s.value, nil
		}
	}
	return "", invalidAddr(addr, "missing p2p peer-id segment")
}

type segment struct {
	protocol string
	value    string
}

func parseSegments(addr string) ([]segment, error) {
	if !strings.HasPrefix(addr, "/") {
		return nil, invalidAddr(addr, "multiaddr must begin with '/'")
	}
	parts := strings.Split(strings.Trim(addr, "/"), "/")
	if len(parts) == 0 || len(parts)%2 != 0 {
		return nil, invalidAddr(addr, "multiaddr segments must be protocol/value pairs")
	}
	segments := make([]segment, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		if parts[i] == "" {
			return nil, invalidAddr(addr, "empty protocol segment")
		}
		segments = append(segments, segment{protocol: parts[i], value: parts[i+1]})
	}
	return segments, nil
}

func invalidAddr(addr, reason string) error {
	return taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindInvalidMultiaddr, taliroerr.EnvelopeBadRequest, "invalid peer address ("+reason+"): "+addr)
}
