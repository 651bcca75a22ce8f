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

// cmd/taliro-node is the node entrypoint, built with gopkg.in/urfave/cli.v1
// the way cmd/kcn/main.go builds klaytn's consensus-node binary: a single
// app with global flags and an Action that wires config, storage and
// metrics and drives the node lifecycle state machine (spec §4.11)
// through to its receive loop.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/urfave/cli.v1"

	"github.com/kon14/taliro/internal/authn"
	"github.com/kon14/taliro/internal/config"
	"github.com/kon14/taliro/internal/httpapi"
	"github.com/kon14/taliro/internal/logger"
	"github.com/kon14/taliro/internal/metrics"
	"github.com/kon14/taliro/internal/node"
	"github.com/kon14/taliro/internal/repo"
)

var log = logger.New("cmd")

var (
	configFileFlag = cli.StringFlag{Name: "config", Usage: "Path to a TOML config file"}
	dataDirFlag    = cli.StringFlag{Name: "datadir", Usage: "Data directory for the badger store"}
	identityFlag   = cli.StringFlag{Name: "identity", Usage: "This node's network identity string"}
	listenFlag     = cli.StringFlag{Name: "listen", Usage: "Listen multiaddr, e.g. /ip4/0.0.0.0/tcp/30333"}
	devFlag        = cli.BoolFlag{Name: "dev", Usage: "Enable developer-only commands (GenerateWallet)"}
	masterKeyFlag  = cli.StringFlag{Name: "masterkey", Usage: "Hex-encoded master key gating InitiateGenesis"}
)

func main() {
	app := cli.NewApp()
	app.Name = "taliro-node"
	app.Usage = "UTXO + proof-of-work blockchain node"
	app.Flags = []cli.Flag{configFileFlag, dataDirFlag, identityFlag, listenFlag, devFlag, masterKeyFlag}
	app.Commands = []cli.Command{generateWalletCommand}
	app.Action = runNode

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runNode(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String(configFileFlag.Name))
	if err != nil {
		return err
	}
	if v := ctx.String(dataDirFlag.Name); v != "" {
		cfg.DataDir = v
	}
	if v := ctx.String(identityFlag.Name); v != "" {
		cfg.Identity = v
	}
	if v := ctx.String(listenFlag.Name); v != "" {
		cfg.ListenAddr = v
	}
	if v := ctx.String(masterKeyFlag.Name); v != "" {
		cfg.MasterKeyHex = v
	}

	banner := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintln(colorable.NewColorableStdout(), banner("taliro-node starting"), "datadir="+cfg.DataDir)

	store, err := repo.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	authenticator, err := authn.New(cfg.MasterKeyHex)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)

	n, err := node.New(store, node.Options{
		DifficultyTarget: cfg.DifficultyTarget,
		QueueSize:        cfg.CommandBufferSize,
		ProcessorPoll:    time.Duration(cfg.ProcessorPollMillis) * time.Millisecond,
		OutboxPoll:       time.Duration(cfg.OutboxPollMillis) * time.Millisecond,
		Authenticator:    authenticator,
		Metrics:          collector,
	})
	if err != nil {
		return err
	}

	if err := n.Bootstrap(cfg.Identity, cfg.ListenAddr); err != nil {
		return err
	}
	if err := n.Start(); err != nil {
		return err
	}

	if cfg.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error("metrics listener failed", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
	}

	if cfg.HTTPAddr != "" {
		handler := httpapi.New(n.Dispatcher())
		go func() {
			if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
				log.Error("http api listener failed", "addr", cfg.HTTPAddr, "err", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		n.Shutdown()
	}()

	return n.Run()
}
