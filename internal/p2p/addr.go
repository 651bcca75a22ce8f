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

package p2p

import (
	"strings"

	"github.com/kon14/taliro/internal/taliroerr"
)

// dialAddrFromMultiaddr extracts a dialable "host:port" from a
// "/ip4/<host>/tcp/<port>/p2p/<id>"-shaped multiaddr. Only the ip4/tcp
// transport pair is supported; anything else is rejected rather than
// silently misdialed.
func dialAddrFromMultiaddr(addr string) (string, error) {
	parts := strings.Split(strings.Trim(addr, "/"), "/")
	var host, port string
	for i := 0; i+1 < len(parts); i += 2 {
		switch parts[i] {
		case "ip4", "ip6", "dns4", "dns6":
			host = parts[i+1]
		case "tcp":
			port = parts[i+1]
		}
	}
	if host == "" || port == "" {
		return "", taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindInvalidMultiaddr, taliroerr.EnvelopeBadRequest, "multiaddr missing an ip/tcp transport pair: "+addr)
	}
	return host + ":" + port, nil
}
