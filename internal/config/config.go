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

// Package config is the node's TOML configuration surface, with this
// load/override precedence: a DefaultConfig literal, optionally overlaid
// by a config file, in turn overlaid by CLI flags.
package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/naoina/toml"

	"github.com/kon14/taliro/internal/dispatcher"
	"github.com/kon14/taliro/internal/outbox"
	"github.com/kon14/taliro/internal/node"
)

// Config is the full set of node settings resolvable from a TOML file.
type Config struct {
	DataDir  string `toml:"data_dir"`
	Identity string `toml:"identity"`
	ListenAddr string `toml:"listen_addr"`
	BootstrapPeers []string `toml:"bootstrap_peers"`

	DifficultyTarget uint32 `toml:"difficulty_target"`

	CommandBufferSize  int   `toml:"command_buffer_size"`
	OutboxPollMillis    int64 `toml:"outbox_poll_millis"`
	ProcessorPollMillis int64 `toml:"processor_poll_millis"`

	HTTPAddr string `toml:"http_addr"`

	MasterKeyHex string `toml:"master_key_hex"`

	MetricsEnabled bool `toml:"metrics_enabled"`
	MetricsAddr    string `toml:"metrics_addr"`
}

// DefaultConfig holds reasonable settings a freshly-initialized node can
// run with unmodified.
var DefaultConfig = Config{
	DataDir:             DefaultDataDir(),
	ListenAddr:          "/ip4/0.0.0.0/tcp/30333",
	DifficultyTarget:    0x1f00ffff,
	CommandBufferSize:   dispatcher.DefaultQueueSize,
	OutboxPollMillis:    outbox.DefaultPollInterval.Milliseconds(),
	ProcessorPollMillis: node.DefaultProcessorPollInterval.Milliseconds(),
	HTTPAddr:            "localhost:8645",
	MetricsEnabled:      false,
	MetricsAddr:         "localhost:8646",
}

// DefaultDataDir places the node's data directory in the user's home
// directory, following a per-OS convention.
func DefaultDataDir() string {
	dirname := "taliro"
	home := homeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", strings.ToUpper(dirname))
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", strings.ToUpper(dirname))
	default:
		return filepath.Join(home, "."+dirname)
	}
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// Load reads a TOML file at path and overlays its fields onto DefaultConfig.
// A missing file is not an error: the caller gets DefaultConfig back.
func Load(path string) (Config, error) {
	cfg := DefaultConfig
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Dump renders cfg back to TOML, mirroring the `dumpconfig` command
// klaytn's cmd/utils/nodecmd exposes.
func Dump(cfg Config) (string, error) {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
