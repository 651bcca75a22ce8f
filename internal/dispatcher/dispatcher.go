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

// Package dispatcher is the command bus (spec §4.1): a bounded,
// many-producer single-consumer channel of typed commands, each carrying a
// single-use Responder. The dispatcher is the only place state-mutating
// operations run, which is what makes cross-component lock ordering a
// non-issue for the rest of the node.
package dispatcher

import (
	"fmt"

	"github.com/kon14/taliro/internal/logger"
)

var log = logger.New("dispatcher")

// ControlSignal is a handler's verdict on whether the receive loop should
// keep running.
type ControlSignal int

const (
	Continue ControlSignal = iota
	Shutdown
)

// DefaultQueueSize bounds the command channel. A producer blocks once it is
// full rather than growing memory unboundedly under backpressure.
const DefaultQueueSize = 256

// Command is implemented by every typed command this bus accepts. handle
// runs the registered handler and fulfills the command's own responder;
// it is never called outside Dispatcher.Run.
type Command interface {
	handle(h Handlers) ControlSignal
}

// Dispatcher owns the command channel. Exactly one goroutine may call Run.
type Dispatcher struct {
	commands  chan Command
	handlers  Handlers
	onCommand func(name string)
}

// New builds a Dispatcher. Handlers is normally empty at construction time
// and filled in via SetHandlers once the node reaches the Started state
// (spec §4.11); sending a command before that point panics on a nil
// handler field, which is intentional -- it is a wiring bug, not a runtime
// condition to recover from.
func New() *Dispatcher {
	return NewWithQueueSize(DefaultQueueSize)
}

// NewWithQueueSize builds a Dispatcher with a caller-specified command
// buffer depth (config.Config.CommandBufferSize), falling back to
// DefaultQueueSize for a non-positive size.
func NewWithQueueSize(size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{commands: make(chan Command, size)}
}

// SetHandlers installs the four composed sub-handlers. Called exactly once,
// by the node state machine's Bootstrapped->Started transition.
func (d *Dispatcher) SetHandlers(h Handlers) {
	d.handlers = h
}

// OnCommand registers a callback invoked with each command's type name
// just before it is dispatched, e.g. to drive a per-command counter.
func (d *Dispatcher) OnCommand(fn func(name string)) {
	d.onCommand = fn
}

// Submit enqueues cmd, blocking if the channel is full. Callers normally go
// through the typed helper functions in commands.go rather than calling
// this directly.
func (d *Dispatcher) Submit(cmd Command) {
	d.commands <- cmd
}

// Run is the single consumer loop (spec §4.1 dispatch contract). Handlers
// execute sequentially with respect to receive order; an individual
// handler may itself await I/O, but Run never runs two handler bodies
// concurrently. Any handler error is logged by the handler itself and does
// not stop the loop -- only a Shutdown control signal, or the channel
// closing, does that.
func (d *Dispatcher) Run(shutdown <-chan struct{}) {
	log.Info("dispatcher receive loop starting")
	for {
		select {
		case <-shutdown:
			log.Info("dispatcher receive loop stopping, shutdown observed")
			return
		case cmd, ok := <-d.commands:
			if !ok {
				log.Info("dispatcher receive loop stopping, command channel closed")
				return
			}
			if d.onCommand != nil {
				d.onCommand(fmt.Sprintf("%T", cmd))
			}
			if d.handlers.dispatch(cmd) == Shutdown {
				return
			}
		}
	}
}

func (h Handlers) dispatch(cmd Command) ControlSignal {
	return cmd.handle(h)
}
