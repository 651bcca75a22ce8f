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
	"math/big"
	"time"

	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/blockchain"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/tx"
)

// GenesisUtxoSpec is one pre-funded output named by InitiateGenesis.
type GenesisUtxoSpec struct {
	WalletAddress chainhash.Hash
	Amount        *big.Int
}

// GenesisConfig is InitiateGenesis's input (spec §8 scenario S1). Credential
// is checked against the node's configured master key (internal/authn)
// before a genesis block is built; an unconfigured master key accepts any
// credential, including an empty one.
type GenesisConfig struct {
	Utxos      []GenesisUtxoSpec
	Timestamp  time.Time
	Credential []byte
}

// AddPeerResult mirrors the four outcomes of spec §4.12's AddPeer command.
type AddPeerResult int

const (
	AddPeerPending AddPeerResult = iota
	AddPeerAlreadyConnected
	AddPeerInvalidAddress
	AddPeerFailedToDialPeer
)

// Identity is the node's own network identity, as reported to GetSelfInfo.
type Identity string

// Handlers is the composed set of sub-handlers the dispatcher's Run loop
// consults. The node state machine assembles this from the blockchain,
// mempool, network, and UTXO components during the Started transition
// (spec §4.11); every field must be non-nil before Run starts receiving.
type Handlers struct {
	// Blockchain
	InitiateGenesis        func(cfg GenesisConfig) error
	HandleMineBlock        func(tpl block.Template) (block.Validated, error)
	HandleBlockAppend      func(nv block.NonValidated) error
	GetTipInfo             func() (*blockchain.TipInfo, error)
	GetBlock               func(hash chainhash.Hash) (*block.NonValidated, bool, error)
	GetBlockByHeight       func(h chainhash.Height) (*block.NonValidated, bool, error)
	GetBlocksByHeightRange func(lo, hi chainhash.Height) ([]*block.NonValidated, error)

	// Mempool
	PlaceTransaction         func(t *tx.Transaction) *tx.Transaction
	GetPaginatedTransactions func(skip, limit int) ([]*tx.Transaction, int)
	GetTransactionsByHashes  func(hashes []chainhash.Hash) []*tx.Transaction

	// UTXO
	GetUtxosByOutpoints func(ops []tx.Outpoint) ([]tx.Utxo, error)
	GetUtxos            func() ([]tx.Utxo, error)

	// Network
	GetSelfInfo func() (Identity, []string, error)
	GetPeers    func() ([]string, error)
	AddPeer     func(addr string) (AddPeerResult, error)

	// P2P inbound
	ReceiveBlockchainTipInfo func(peer string, hash chainhash.Hash, height chainhash.Height) error
	ReceiveBlocks            func(peer string, blocks []block.NonValidated) error
	ProxyForwardNetworkEvent func(peer string, payload []byte) error

	// System
	RequestNodeShutdown func()
}
