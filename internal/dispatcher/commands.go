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
	"github.com/kon14/taliro/internal/block"
	"github.com/kon14/taliro/internal/blockchain"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/tx"
)

// result pairs a value with an error, exactly what a responder fulfills
// exactly once with.
type result[T any] struct {
	value T
	err   error
}

// Responder is a single-use reply slot (spec §4.1, glossary). It is
// buffered by one so the dispatcher's handler never blocks on a caller
// that has walked away; Await still blocks the caller until fulfilled.
type Responder[T any] struct {
	ch chan result[T]
}

func newResponder[T any]() Responder[T] {
	return Responder[T]{ch: make(chan result[T], 1)}
}

// fulfill completes the responder. Each command's handle calls it exactly
// once; a second call is not detected: it blocks while the first result
// is still unread, and otherwise leaves a result that nobody reads.
func (r Responder[T]) fulfill(v T, err error) {
	r.ch <- result[T]{value: v, err: err}
}

// Await blocks until the dispatcher fulfills this responder.
func (r Responder[T]) Await() (T, error) {
	res := <-r.ch
	return res.value, res.err
}

// --- Blockchain commands ---

type initiateGenesisCmd struct {
	Cfg  GenesisConfig
	Resp Responder[struct{}]
}

func (c initiateGenesisCmd) handle(h Handlers) ControlSignal {
	err := h.InitiateGenesis(c.Cfg)
	c.Resp.fulfill(struct{}{}, err)
	return Continue
}

// InitiateGenesis submits the genesis command and blocks for the reply.
func InitiateGenesis(d *Dispatcher, cfg GenesisConfig) error {
	resp := newResponder[struct{}]()
	d.Submit(initiateGenesisCmd{Cfg: cfg, Resp: resp})
	_, err := resp.Await()
	return err
}

type handleMineBlockCmd struct {
	Template block.Template
	Resp     Responder[block.Validated]
}

func (c handleMineBlockCmd) handle(h Handlers) ControlSignal {
	b, err := h.HandleMineBlock(c.Template)
	c.Resp.fulfill(b, err)
	return Continue
}

func HandleMineBlock(d *Dispatcher, tpl block.Template) (block.Validated, error) {
	resp := newResponder[block.Validated]()
	d.Submit(handleMineBlockCmd{Template: tpl, Resp: resp})
	return resp.Await()
}

type handleBlockAppendCmd struct {
	Block block.NonValidated
	Resp  Responder[struct{}]
}

func (c handleBlockAppendCmd) handle(h Handlers) ControlSignal {
	err := h.HandleBlockAppend(c.Block)
	c.Resp.fulfill(struct{}{}, err)
	return Continue
}

func HandleBlockAppend(d *Dispatcher, nv block.NonValidated) error {
	resp := newResponder[struct{}]()
	d.Submit(handleBlockAppendCmd{Block: nv, Resp: resp})
	_, err := resp.Await()
	return err
}

type getTipInfoCmd struct {
	Resp Responder[*blockchain.TipInfo]
}

func (c getTipInfoCmd) handle(h Handlers) ControlSignal {
	t, err := h.GetTipInfo()
	c.Resp.fulfill(t, err)
	return Continue
}

func GetTipInfo(d *Dispatcher) (*blockchain.TipInfo, error) {
	resp := newResponder[*blockchain.TipInfo]()
	d.Submit(getTipInfoCmd{Resp: resp})
	return resp.Await()
}

type getBlockCmd struct {
	Hash chainhash.Hash
	Resp Responder[*block.NonValidated]
}

func (c getBlockCmd) handle(h Handlers) ControlSignal {
	b, _, err := h.GetBlock(c.Hash)
	c.Resp.fulfill(b, err)
	return Continue
}

func GetBlock(d *Dispatcher, hash chainhash.Hash) (*block.NonValidated, error) {
	resp := newResponder[*block.NonValidated]()
	d.Submit(getBlockCmd{Hash: hash, Resp: resp})
	return resp.Await()
}

type getBlockByHeightCmd struct {
	Height chainhash.Height
	Resp   Responder[*block.NonValidated]
}

func (c getBlockByHeightCmd) handle(h Handlers) ControlSignal {
	b, _, err := h.GetBlockByHeight(c.Height)
	c.Resp.fulfill(b, err)
	return Continue
}

func GetBlockByHeight(d *Dispatcher, height chainhash.Height) (*block.NonValidated, error) {
	resp := newResponder[*block.NonValidated]()
	d.Submit(getBlockByHeightCmd{Height: height, Resp: resp})
	return resp.Await()
}

type getBlocksByHeightRangeCmd struct {
	Lo, Hi chainhash.Height
	Resp   Responder[[]*block.NonValidated]
}

func (c getBlocksByHeightRangeCmd) handle(h Handlers) ControlSignal {
	blocks, err := h.GetBlocksByHeightRange(c.Lo, c.Hi)
	c.Resp.fulfill(blocks, err)
	return Continue
}

func GetBlocksByHeightRange(d *Dispatcher, lo, hi chainhash.Height) ([]*block.NonValidated, error) {
	resp := newResponder[[]*block.NonValidated]()
	d.Submit(getBlocksByHeightRangeCmd{Lo: lo, Hi: hi, Resp: resp})
	return resp.Await()
}

// --- Mempool commands ---

type placeTransactionCmd struct {
	Tx   *tx.Transaction
	Resp Responder[*tx.Transaction]
}

func (c placeTransactionCmd) handle(h Handlers) ControlSignal {
	c.Resp.fulfill(h.PlaceTransaction(c.Tx), nil)
	return Continue
}

func PlaceTransaction(d *Dispatcher, t *tx.Transaction) (*tx.Transaction, error) {
	resp := newResponder[*tx.Transaction]()
	d.Submit(placeTransactionCmd{Tx: t, Resp: resp})
	return resp.Await()
}

type paginatedTxResult struct {
	Txs   []*tx.Transaction
	Total int
}

type getPaginatedTransactionsCmd struct {
	Skip, Limit int
	Resp        Responder[paginatedTxResult]
}

func (c getPaginatedTransactionsCmd) handle(h Handlers) ControlSignal {
	txs, total := h.GetPaginatedTransactions(c.Skip, c.Limit)
	c.Resp.fulfill(paginatedTxResult{Txs: txs, Total: total}, nil)
	return Continue
}

func GetPaginatedTransactions(d *Dispatcher, skip, limit int) ([]*tx.Transaction, int, error) {
	resp := newResponder[paginatedTxResult]()
	d.Submit(getPaginatedTransactionsCmd{Skip: skip, Limit: limit, Resp: resp})
	res, err := resp.Await()
	return res.Txs, res.Total, err
}

type getTransactionsByHashesCmd struct {
	Hashes []chainhash.Hash
	Resp   Responder[[]*tx.Transaction]
}

func (c getTransactionsByHashesCmd) handle(h Handlers) ControlSignal {
	c.Resp.fulfill(h.GetTransactionsByHashes(c.Hashes), nil)
	return Continue
}

func GetTransactionsByHashes(d *Dispatcher, hashes []chainhash.Hash) ([]*tx.Transaction, error) {
	resp := newResponder[[]*tx.Transaction]()
	d.Submit(getTransactionsByHashesCmd{Hashes: hashes, Resp: resp})
	return resp.Await()
}

// --- UTXO commands ---

type getUtxosByOutpointsCmd struct {
	Outpoints []tx.Outpoint
	Resp      Responder[[]tx.Utxo]
}

func (c getUtxosByOutpointsCmd) handle(h Handlers) ControlSignal {
	utxos, err := h.GetUtxosByOutpoints(c.Outpoints)
	c.Resp.fulfill(utxos, err)
	return Continue
}

func GetUtxosByOutpoints(d *Dispatcher, ops []tx.Outpoint) ([]tx.Utxo, error) {
	resp := newResponder[[]tx.Utxo]()
	d.Submit(getUtxosByOutpointsCmd{Outpoints: ops, Resp: resp})
	return resp.Await()
}

type getUtxosCmd struct {
	Resp Responder[[]tx.Utxo]
}

func (c getUtxosCmd) handle(h Handlers) ControlSignal {
	utxos, err := h.GetUtxos()
	c.Resp.fulfill(utxos, err)
	return Continue
}

func GetUtxos(d *Dispatcher) ([]tx.Utxo, error) {
	resp := newResponder[[]tx.Utxo]()
	d.Submit(getUtxosCmd{Resp: resp})
	return resp.Await()
}

// --- Network commands ---

type selfInfoResult struct {
	Identity Identity
	Addrs    []string
}

type getSelfInfoCmd struct {
	Resp Responder[selfInfoResult]
}

func (c getSelfInfoCmd) handle(h Handlers) ControlSignal {
	id, addrs, err := h.GetSelfInfo()
	c.Resp.fulfill(selfInfoResult{Identity: id, Addrs: addrs}, err)
	return Continue
}

func GetSelfInfo(d *Dispatcher) (Identity, []string, error) {
	resp := newResponder[selfInfoResult]()
	d.Submit(getSelfInfoCmd{Resp: resp})
	res, err := resp.Await()
	return res.Identity, res.Addrs, err
}

type getPeersCmd struct {
	Resp Responder[[]string]
}

func (c getPeersCmd) handle(h Handlers) ControlSignal {
	peers, err := h.GetPeers()
	c.Resp.fulfill(peers, err)
	return Continue
}

func GetPeers(d *Dispatcher) ([]string, error) {
	resp := newResponder[[]string]()
	d.Submit(getPeersCmd{Resp: resp})
	return resp.Await()
}

type addPeerCmd struct {
	Addr string
	Resp Responder[AddPeerResult]
}

func (c addPeerCmd) handle(h Handlers) ControlSignal {
	res, err := h.AddPeer(c.Addr)
	c.Resp.fulfill(res, err)
	return Continue
}

func AddPeer(d *Dispatcher, addr string) (AddPeerResult, error) {
	resp := newResponder[AddPeerResult]()
	d.Submit(addPeerCmd{Addr: addr, Resp: resp})
	return resp.Await()
}

// --- P2P inbound commands ---

type receiveBlockchainTipInfoCmd struct {
	Peer   string
	Hash   chainhash.Hash
	Height chainhash.Height
	Resp   Responder[struct{}]
}

func (c receiveBlockchainTipInfoCmd) handle(h Handlers) ControlSignal {
	err := h.ReceiveBlockchainTipInfo(c.Peer, c.Hash, c.Height)
	c.Resp.fulfill(struct{}{}, err)
	return Continue
}

func ReceiveBlockchainTipInfo(d *Dispatcher, peer string, hash chainhash.Hash, height chainhash.Height) error {
	resp := newResponder[struct{}]()
	d.Submit(receiveBlockchainTipInfoCmd{Peer: peer, Hash: hash, Height: height, Resp: resp})
	_, err := resp.Await()
	return err
}

type receiveBlocksCmd struct {
	Peer   string
	Blocks []block.NonValidated
	Resp   Responder[struct{}]
}

func (c receiveBlocksCmd) handle(h Handlers) ControlSignal {
	err := h.ReceiveBlocks(c.Peer, c.Blocks)
	c.Resp.fulfill(struct{}{}, err)
	return Continue
}

func ReceiveBlocks(d *Dispatcher, peer string, blocks []block.NonValidated) error {
	resp := newResponder[struct{}]()
	d.Submit(receiveBlocksCmd{Peer: peer, Blocks: blocks, Resp: resp})
	_, err := resp.Await()
	return err
}

type proxyForwardNetworkEventCmd struct {
	Peer    string
	Payload []byte
	Resp    Responder[struct{}]
}

func (c proxyForwardNetworkEventCmd) handle(h Handlers) ControlSignal {
	err := h.ProxyForwardNetworkEvent(c.Peer, c.Payload)
	c.Resp.fulfill(struct{}{}, err)
	return Continue
}

func ProxyForwardNetworkEvent(d *Dispatcher, peer string, payload []byte) error {
	resp := newResponder[struct{}]()
	d.Submit(proxyForwardNetworkEventCmd{Peer: peer, Payload: payload, Resp: resp})
	_, err := resp.Await()
	return err
}

// --- System commands ---

type requestNodeShutdownCmd struct{}

func (c requestNodeShutdownCmd) handle(h Handlers) ControlSignal {
	h.RequestNodeShutdown()
	return Shutdown
}

// RequestNodeShutdown submits the shutdown command. It does not wait for a
// reply -- the command itself is the dispatcher's signal to stop its
// receive loop (spec §4.11 Running->Terminating).
func RequestNodeShutdown(d *Dispatcher) {
	d.Submit(requestNodeShutdownCmd{})
}
