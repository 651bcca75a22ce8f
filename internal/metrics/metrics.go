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

// Package metrics is a narrow prometheus instrumentation surface for the
// core (spec §1: logging/metrics *backends* stay external collaborators,
// but the instrumentation points themselves belong to the core). It plays
// the same role klaytn/cmd/kcn/main.go's prometheus wiring plays --
// registering a handful of counters/gauges against a registerer that the
// caller supplies -- scoped down to what this node's
// command bus and outbox actually produce.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles every metric the core updates. A nil *Collector is
// valid and every method on it becomes a no-op, so callers that construct
// a Node without metrics enabled (config.Config.MetricsEnabled = false)
// don't need to thread an "enabled" bool through every call site.
type Collector struct {
	commandsProcessed *prometheus.CounterVec
	blocksCommitted   prometheus.Counter
	mempoolSize       prometheus.Gauge
	outboxBacklog     prometheus.Gauge
	procQueueDepth    prometheus.Gauge
}

// New registers the core's metrics against reg and returns a Collector.
// Passing prometheus.NewRegistry() keeps callers isolated from the global
// default registerer; cmd/taliro-node does this and serves that registry
// over promhttp when metrics are enabled.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		commandsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taliro",
			Subsystem: "dispatcher",
			Name:      "commands_processed_total",
			Help:      "Commands handled by the dispatcher, by command name.",
		}, []string{"command"}),
		blocksCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taliro",
			Subsystem: "blockchain",
			Name:      "blocks_committed_total",
			Help:      "Blocks durably appended to the blocks store.",
		}),
		mempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taliro",
			Subsystem: "mempool",
			Name:      "size",
			Help:      "Transactions currently held in the mempool.",
		}),
		outboxBacklog: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taliro",
			Subsystem: "outbox",
			Name:      "unprocessed_backlog",
			Help:      "Outbox entries not yet relayed.",
		}),
		procQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taliro",
			Subsystem: "procqueue",
			Name:      "buffered_blocks",
			Help:      "Blocks buffered in the processing queue awaiting their turn.",
		}),
	}
	reg.MustRegister(c.commandsProcessed, c.blocksCommitted, c.mempoolSize, c.outboxBacklog, c.procQueueDepth)
	return c
}

func (c *Collector) ObserveCommand(name string) {
	if c == nil {
		return
	}
	c.commandsProcessed.WithLabelValues(name).Inc()
}

func (c *Collector) ObserveBlockCommitted() {
	if c == nil {
		return
	}
	c.blocksCommitted.Inc()
}

func (c *Collector) SetMempoolSize(n int) {
	if c == nil {
		return
	}
	c.mempoolSize.Set(float64(n))
}

func (c *Collector) SetOutboxBacklog(n int) {
	if c == nil {
		return
	}
	c.outboxBacklog.Set(float64(n))
}

func (c *Collector) SetProcQueueDepth(n int) {
	if c == nil {
		return
	}
	c.procQueueDepth.Set(float64(n))
}
