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

// Package logger provides the node's single structured-logging entry point,
// one zap-backed logger instance per module, mirroring the way the
// klaytn/go-ethereum lineage hands every package its own
// log.NewModuleLogger(...) instance instead of a shared global logger.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	base     *zap.SugaredLogger
	baseOnce sync.Once
)

func root() *zap.SugaredLogger {
	baseOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		if os.Getenv("TALIRO_LOG_JSON") == "1" {
			cfg.Encoding = "json"
		}
		built, err := cfg.Build()
		if err != nil {
			built = zap.NewExample()
		}
		base = built.Sugar()
	})
	return base
}

// Logger is a contextual logger tracking a module name and any fields
// attached via With. It is safe for concurrent use.
type Logger struct {
	z *zap.SugaredLogger
}

// New returns the module logger for the named component, e.g. "dispatcher"
// or "blockchain". Call once per package and keep the result in a package
// level var, the same way klaytn keeps `var logger = log.NewModuleLogger(...)`.
func New(module string) *Logger {
	return &Logger{z: root().Named(module)}
}

// With returns a derived logger with additional structured key/value fields.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{z: l.z.With(kv...)}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.z.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.z.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.z.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.z.Errorw(msg, kv...) }

// Crit logs at error level and terminates the process, matching klaytn's
// logger.Crit behavior for invariants that must never be violated.
func (l *Logger) Crit(msg string, kv ...interface{}) {
	l.z.Errorw(msg, kv...)
	os.Exit(1)
}

// Sync flushes any buffered log entries, to be called before process exit.
func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}
