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

package node

import (
	"sync"
	"time"

	"github.com/kon14/taliro/internal/authn"
	"github.com/kon14/taliro/internal/blockchain"
	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/dispatcher"
	"github.com/kon14/taliro/internal/mempool"
	"github.com/kon14/taliro/internal/metrics"
	"github.com/kon14/taliro/internal/outbox"
	"github.com/kon14/taliro/internal/p2p"
	"github.com/kon14/taliro/internal/procqueue"
	"github.com/kon14/taliro/internal/repo"
	"github.com/kon14/taliro/internal/syncqueue"
	"github.com/kon14/taliro/internal/taliroerr"
	"github.com/kon14/taliro/internal/utxo"
	"github.com/kon14/taliro/internal/validate"
)

// Stage is one state of the five-state lifecycle (spec §4.11). Transitions
// are one-way except Running -> Terminating.
type Stage int

const (
	StageInitialized Stage = iota
	StageBootstrapped
	StageStarted
	StageRunning
	StageTerminating
)

func (s Stage) String() string {
	switch s {
	case StageInitialized:
		return "initialized"
	case StageBootstrapped:
		return "bootstrapped"
	case StageStarted:
		return "started"
	case StageRunning:
		return "running"
	case StageTerminating:
		return "terminating"
	default:
		return "unknown"
	}
}

// Node is the component graph plus the lifecycle state machine around it.
type Node struct {
	mu    sync.RWMutex
	stage Stage

	store          *repo.Store
	chain          *blockchain.Manager
	mempool        *mempool.Mempool
	utxo           *utxo.Store
	txValidator    *validate.TransactionValidator
	blockValidator *validate.BlockValidator
	procQueue      *procqueue.Queue
	syncQueue      *syncqueue.Queue
	outboxRelay    *outbox.Relay
	dispatcher     *dispatcher.Dispatcher
	network        p2p.NetworkHandle
	authenticator  authn.Authenticator
	metrics        *metrics.Collector

	difficultyTarget uint32
	processorPoll    time.Duration
	outboxPoll       time.Duration

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// Options configures the tunables New otherwise defaults: command buffer
// depth, and the processor/outbox poll intervals (config.Config's
// CommandBufferSize/ProcessorPollMillis/OutboxPollMillis surface these).
type Options struct {
	DifficultyTarget uint32
	QueueSize        int
	ProcessorPoll    time.Duration
	OutboxPoll       time.Duration
	Authenticator    authn.Authenticator
	Metrics          *metrics.Collector
}

// New constructs every component over store and brings the node to
// Initialized: persistent stores are open, the network engine is not yet
// connected (spec §4.11). DifficultyTarget is a stub value carried through
// mined/genesis blocks; dynamic difficulty adjustment is out of scope
// (spec §1 Non-goals). Zero QueueSize, ProcessorPoll and OutboxPoll fall
// back to their defaults; the other Options fields are used as given.
func New(store *repo.Store, opts Options) (*Node, error) {
	chain := blockchain.New(store)
	utxoStore := utxo.New(store)
	mp := mempool.New()
	txValidator := validate.NewTransactionValidator(utxoStore)
	blockValidator := validate.NewBlockValidator(chain, txValidator)

	tip, err := chain.GetTipInfo()
	if err != nil {
		return nil, err
	}
	start := chainhash.Genesis
	if tip != nil {
		start = tip.Height.Next()
	}
	procQueue := procqueue.New(start)

	processorPoll := opts.ProcessorPoll
	if processorPoll <= 0 {
		processorPoll = DefaultProcessorPollInterval
	}

	n := &Node{
		stage:            StageInitialized,
		store:            store,
		chain:            chain,
		mempool:          mp,
		utxo:             utxoStore,
		txValidator:      txValidator,
		blockValidator:   blockValidator,
		procQueue:        procQueue,
		dispatcher:       dispatcher.NewWithQueueSize(opts.QueueSize),
		authenticator:    opts.Authenticator,
		metrics:          opts.Metrics,
		difficultyTarget: opts.DifficultyTarget,
		processorPoll:    processorPoll,
		outboxPoll:       opts.OutboxPoll,
		shutdownCh:       make(chan struct{}),
	}
	n.syncQueue = syncqueue.New(n.syncQueueRequestSender, n.procQueue)
	return n, nil
}

// Stage returns the node's current lifecycle stage; queryable mid-transition
// by any caller holding a reference (spec §4.11, §9 design note on
// InitiateGenesis not awaiting its own side effects -- Stage has the same
// "read while something else is in flight" shape and is deliberately safe
// for that).
func (n *Node) Stage() Stage {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stage
}

func (n *Node) setStage(s Stage) {
	n.mu.Lock()
	n.stage = s
	n.mu.Unlock()
}

// Bootstrap connects the network engine and transitions to Bootstrapped
// (spec §4.11). Queues are already wired in New; this step exists
// separately because, in the production topology, it is the step that can
// fail on a bind error (a fatal condition per spec §7).
func (n *Node) Bootstrap(identity, listenAddr string) error {
	if n.Stage() != StageInitialized {
		return taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopePreconditionFailed, "Bootstrap called outside Initialized stage")
	}
	network, err := p2p.Listen(identity, listenAddr, p2p.Callbacks{
		OnGossip:   n.onGossip,
		OnRequest:  n.onRequest,
		OnResponse: n.onResponse,
	})
	if err != nil {
		return err
	}
	n.network = network
	n.setStage(StageBootstrapped)
	return nil
}

// Start composes the dispatcher's four sub-handlers and transitions to
// Started (spec §4.11).
func (n *Node) Start() error {
	if n.Stage() != StageBootstrapped {
		return taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopePreconditionFailed, "Start called outside Bootstrapped stage")
	}
	n.dispatcher.SetHandlers(n.buildHandlers())
	n.dispatcher.OnCommand(n.metrics.ObserveCommand)
	n.outboxRelay = outbox.NewRelay(n.store, n.replayOutboxEntry).
		WithBacklogObserver(func(count int) { n.metrics.SetOutboxBacklog(count) })
	if n.outboxPoll > 0 {
		n.outboxRelay = n.outboxRelay.WithPollInterval(n.outboxPoll)
	}
	n.setStage(StageStarted)
	return nil
}

// Run spawns the processor worker and outbox relay, then enters the
// dispatcher's receive loop, which owns this goroutine until a Shutdown
// control signal or the shutdown channel closes (spec §4.11 Running). On
// return, Run fans shutdown out to every worker and transitions to
// Terminating.
func (n *Node) Run() error {
	if n.Stage() != StageStarted {
		return taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopePreconditionFailed, "Run called outside Started stage")
	}
	n.setStage(StageRunning)

	go n.runProcessor()
	go n.outboxRelay.Run(n.shutdownCh)

	n.dispatcher.Run(n.shutdownCh)

	n.triggerShutdown()
	n.setStage(StageTerminating)
	if n.network != nil {
		_ = n.network.Close()
	}
	return nil
}

// Shutdown requests a graceful stop via the command bus (spec §6
// lifecycle signals: the OS-level shutdown initiator enqueues
// RequestNodeShutdown).
func (n *Node) Shutdown() {
	dispatcher.RequestNodeShutdown(n.dispatcher)
}

// triggerShutdown closes the shared broadcast channel exactly once,
// fanning the signal out to every worker selecting on it (spec §4.11
// Terminating, §5 cancellation).
func (n *Node) triggerShutdown() {
	n.shutdownOnce.Do(func() { close(n.shutdownCh) })
}

// Dispatcher exposes the command bus for external callers (HTTP API, CLI)
// to submit commands through.
func (n *Node) Dispatcher() *dispatcher.Dispatcher { return n.dispatcher }
