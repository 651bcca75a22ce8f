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
	"net"
	"strings"
	"sync"

	"github.com/kon14/taliro/internal/logger"
	"github.com/kon14/taliro/internal/netaddr"
	"github.com/kon14/taliro/internal/taliroerr"
	"github.com/kon14/taliro/internal/wire"
)

var log = logger.New("p2p")

// messageKind tags every frame exchanged over a peer connection, since a
// single connection carries gossip, request, and response traffic.
type messageKind byte

const (
	messageKindGossip messageKind = iota + 1
	messageKindRequest
	messageKindResponse
)

// Callbacks are invoked for inbound traffic. They are called from the
// connection's own read goroutine, so implementations must not block
// beyond routing the event onward (typically: submit a dispatcher
// command and return; the dispatcher's own serialization handles the
// rest).
type Callbacks struct {
	OnGossip   func(peer string, event GossipEvent)
	OnRequest  func(peer string, payload []byte) []byte
	OnResponse func(peer string, payload []byte)
}

// Network is a minimal TCP transport satisfying NetworkHandle. It is a
// standalone implementation of the consumed contract (spec §4.12, §1 Non-
// goals exclude a concrete production overlay), deliberately small: one
// goroutine per connection, no peer discovery, no NAT traversal, no
// connection retry.
type Network struct {
	identity   string
	listenAddr string
	ln         net.Listener
	callbacks  Callbacks

	mu    sync.Mutex
	peers map[string]net.Conn // peer id -> live connection
}

// Listen starts accepting inbound peer connections on listenAddr, given
// either as host:port or as an ip/tcp multiaddr such as
// /ip4/0.0.0.0/tcp/30333 (port 0 is permitted but breaks reconnection
// across restarts, spec §9 open questions).
func Listen(identity, listenAddr string, cb Callbacks) (*Network, error) {
	if strings.HasPrefix(listenAddr, "/") {
		hostPort, err := dialAddrFromMultiaddr(listenAddr)
		if err != nil {
			return nil, err
		}
		listenAddr = hostPort
	}
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, taliroerr.Wrap(err, taliroerr.GroupNetwork, taliroerr.KindPeerConnectionFailed, taliroerr.EnvelopeInternal, "failed to bind listener")
	}
	n := &Network{
		identity:   identity,
		listenAddr: ln.Addr().String(),
		ln:         ln,
		callbacks:  cb,
		peers:      make(map[string]net.Conn),
	}
	go n.acceptLoop()
	return n, nil
}

func (n *Network) acceptLoop() {
	for {
		conn, err := n.ln.Accept()
		if err != nil {
			return
		}
		go n.handleConn(conn.RemoteAddr().String(), conn)
	}
}

func (n *Network) handleConn(peer string, conn net.Conn) {
	defer conn.Close()
	for {
		frame, err := wire.ReadFrame(conn)
		if err != nil {
			log.Debug("peer connection closed", "peer", peer, "err", err)
			return
		}
		if len(frame) < 1 {
			continue
		}
		kind, payload := messageKind(frame[0]), frame[1:]
		switch kind {
		case messageKindGossip:
			event, err := DecodeGossipEvent(payload)
			if err != nil {
				log.Warn("failed to decode gossip event", "peer", peer, "err", err)
				continue
			}
			if n.callbacks.OnGossip != nil {
				n.callbacks.OnGossip(peer, event)
			}
		case messageKindRequest:
			if n.callbacks.OnRequest == nil {
				continue
			}
			resp := n.callbacks.OnRequest(peer, payload)
			if resp == nil {
				continue
			}
			_ = wire.WriteFrame(conn, append([]byte{byte(messageKindResponse)}, resp...))
		case messageKindResponse:
			if n.callbacks.OnResponse != nil {
				n.callbacks.OnResponse(peer, payload)
			}
		}
	}
}

// PublishNetworkEvent gossips event to every connected peer, best-effort
// (spec §4.12: success does not imply delivery).
func (n *Network) PublishNetworkEvent(event GossipEvent) error {
	payload := append([]byte{byte(messageKindGossip)}, EncodeGossipEvent(event)...)
	n.mu.Lock()
	defer n.mu.Unlock()
	for addr, conn := range n.peers {
		if err := wire.WriteFrame(conn, payload); err != nil {
			log.Warn("failed to gossip to peer", "peer", addr, "err", err)
		}
	}
	return nil
}

// SendRequest forwards payload to peer as a request frame (spec §4.8's
// ProxyForwardNetworkEvent use case). The reply, if any, arrives
// asynchronously through Callbacks.OnResponse.
func (n *Network) SendRequest(peer string, payload []byte) error {
	n.mu.Lock()
	conn, ok := n.peers[peer]
	n.mu.Unlock()
	if !ok {
		return taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindPeerConnectionFailed, taliroerr.EnvelopeNotFound, "no live connection to peer")
	}
	return wire.WriteFrame(conn, append([]byte{byte(messageKindRequest)}, payload...))
}

func (n *Network) SelfInfo() (string, []string) {
	return n.identity, []string{n.listenAddr}
}

func (n *Network) Peers() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.peers))
	for addr := range n.peers {
		out = append(out, addr)
	}
	return out
}

// AddPeer dials addr and, on success, registers the connection for gossip
// and request traffic (spec §4.12's four-outcome AddPeer contract).
func (n *Network) AddPeer(addr string) (AddPeerResult, error) {
	if err := netaddr.Validate(addr); err != nil {
		return AddPeerInvalidAddress, err
	}
	peerID, err := netaddr.PeerID(addr)
	if err != nil {
		return AddPeerInvalidAddress, err
	}

	n.mu.Lock()
	if _, connected := n.peers[peerID]; connected {
		n.mu.Unlock()
		return AddPeerAlreadyConnected, nil
	}
	n.mu.Unlock()

	dialAddr, err := dialAddrFromMultiaddr(addr)
	if err != nil {
		return AddPeerInvalidAddress, err
	}
	conn, err := net.Dial("tcp", dialAddr)
	if err != nil {
		return AddPeerFailedToDialPeer, taliroerr.Wrap(err, taliroerr.GroupNetwork, taliroerr.KindPeerConnectionFailed, taliroerr.EnvelopeInternal, "failed to dial peer")
	}

	n.mu.Lock()
	n.peers[peerID] = conn
	n.mu.Unlock()
	go n.handleConn(peerID, conn)

	return AddPeerPending, nil
}

func (n *Network) Close() error {
	n.mu.Lock()
	for _, conn := range n.peers {
		conn.Close()
	}
	n.mu.Unlock()
	return n.ln.Close()
}
