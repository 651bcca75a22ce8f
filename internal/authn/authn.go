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

// Package authn gates privileged command-bus operations (today: a manual
// InitiateGenesis replay) behind a single master key. It is scaffolding for
// a future auth system, not one itself: HTTP-level auth stays out of scope.
package authn

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/kon14/taliro/internal/taliroerr"
)

// Authenticator compares a presented key against a configured master key in
// constant time. A zero-valued Authenticator (empty key) disables the gate:
// Authenticate always returns true, matching an unconfigured master key
// meaning "no auth configured" rather than "nothing can pass."
type Authenticator struct {
	key []byte
}

// New builds an Authenticator from a hex-encoded master key. An empty
// string disables the gate.
func New(masterKeyHex string) (Authenticator, error) {
	if masterKeyHex == "" {
		return Authenticator{}, nil
	}
	key, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return Authenticator{}, taliroerr.Wrap(err, taliroerr.GroupCryptographic, taliroerr.KindDecodingFailed, taliroerr.EnvelopeConfiguration, "master key must be hex-encoded")
	}
	return Authenticator{key: key}, nil
}

// Authenticate reports whether presented matches the configured master key.
func (a Authenticator) Authenticate(presented []byte) bool {
	if len(a.key) == 0 {
		return true
	}
	if len(presented) != len(a.key) {
		return false
	}
	return subtle.ConstantTimeCompare(presented, a.key) == 1
}
