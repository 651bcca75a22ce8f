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

package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"gopkg.in/urfave/cli.v1"

	"github.com/kon14/taliro/internal/chainhash"
)

// generateWalletCommand is the dev-only keypair generator supplemented from
// original_source/application/src/use_cases/generate_wallet.rs: a private
// key plus its derived wallet address, with no mnemonic/HD support (spec §1
// Non-goals). Never reachable from the command bus; it exists purely as a
// local-testing convenience gated behind --dev.
var generateWalletCommand = cli.Command{
	Name:  "generate-wallet",
	Usage: "Generate a dev-only keypair and its wallet address",
	Flags: []cli.Flag{devFlag},
	Action: func(ctx *cli.Context) error {
		if !ctx.Bool(devFlag.Name) {
			return cli.NewExitError("generate-wallet requires --dev", 1)
		}
		priv, addr, err := generateWallet()
		if err != nil {
			return err
		}
		fmt.Printf("private_key: %s\naddress:     %s\n", priv, addr.Hex())
		return nil
	},
}

// generateWallet produces a P-256 keypair (no secp256k1 in this module's
// dependency closure -- see DESIGN.md) and derives the wallet address as
// the content hash of the uncompressed public key point, matching the
// "pubkey -> address" shape chainhash.Sum is used for elsewhere.
func generateWallet() (privateKeyHex string, address chainhash.Hash, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", chainhash.Hash{}, err
	}
	pub := elliptic.Marshal(elliptic.P256(), key.X, key.Y)
	return hex.EncodeToString(key.D.Bytes()), chainhash.Sum(pub), nil
}
