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

// Package httpapi is a thin read-only HTTP presentation shim over the
// command bus. Full HTTP transport, authentication, and request-level
// validation are out of scope (spec §1): this package exists only so the
// julienschmidt/httprouter dependency has a real caller and the read-only
// queries spec §4.1 defines (GetTipInfo, GetBlock, GetBlockByHeight,
// GetBlocksByHeightRange, GetUtxos, GetPaginatedTransactions) are reachable
// over a wire a human can curl during development.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/kon14/taliro/internal/chainhash"
	"github.com/kon14/taliro/internal/dispatcher"
	"github.com/kon14/taliro/internal/taliroerr"
)

// New builds the read-only HTTP router over d. Callers (cmd/taliro-node)
// wrap the result with http.Server themselves; this package only supplies
// the handler.
func New(d *dispatcher.Dispatcher) http.Handler {
	r := httprouter.New()
	r.GET("/v1/tip", handleGetTip(d))
	r.GET("/v1/blocks/:hash", handleGetBlock(d))
	r.GET("/v1/blocks/height/:height", handleGetBlockByHeight(d))
	r.GET("/v1/blocks/range/:lo/:hi", handleGetBlocksByHeightRange(d))
	r.GET("/v1/utxos", handleGetUtxos(d))
	r.GET("/v1/mempool", handleGetMempool(d))
	return r
}

func handleGetTip(d *dispatcher.Dispatcher) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		tip, err := dispatcher.GetTipInfo(d)
		writeJSON(w, tip, err)
	}
}

func handleGetBlock(d *dispatcher.Dispatcher) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
		hash, err := chainhash.FromHex(ps.ByName("hash"))
		if err != nil {
			writeJSON(w, nil, taliroerr.Wrap(err, taliroerr.GroupCryptographic, taliroerr.KindDecodingFailed, taliroerr.EnvelopeBadRequest, "malformed block hash"))
			return
		}
		b, err := dispatcher.GetBlock(d, hash)
		writeJSON(w, b, err)
	}
}

func handleGetBlockByHeight(d *dispatcher.Dispatcher) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
		h, err := parseHeight(ps.ByName("height"))
		if err != nil {
			writeJSON(w, nil, err)
			return
		}
		b, err := dispatcher.GetBlockByHeight(d, h)
		writeJSON(w, b, err)
	}
}

func handleGetBlocksByHeightRange(d *dispatcher.Dispatcher) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
		lo, err := parseHeight(ps.ByName("lo"))
		if err != nil {
			writeJSON(w, nil, err)
			return
		}
		hi, err := parseHeight(ps.ByName("hi"))
		if err != nil {
			writeJSON(w, nil, err)
			return
		}
		blocks, err := dispatcher.GetBlocksByHeightRange(d, lo, hi)
		writeJSON(w, blocks, err)
	}
}

func handleGetUtxos(d *dispatcher.Dispatcher) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		utxos, err := dispatcher.GetUtxos(d)
		writeJSON(w, utxos, err)
	}
}

func handleGetMempool(d *dispatcher.Dispatcher) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		skip, limit := 0, 50
		if v := r.URL.Query().Get("skip"); v != "" {
			skip, _ = strconv.Atoi(v)
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		txs, total, err := dispatcher.GetPaginatedTransactions(d, skip, limit)
		writeJSON(w, struct {
			Transactions interface{} `json:"transactions"`
			Total        int         `json:"total"`
		}{txs, total}, err)
	}
}

func parseHeight(s string) (chainhash.Height, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, taliroerr.Wrap(err, taliroerr.GroupCryptographic, taliroerr.KindDecodingFailed, taliroerr.EnvelopeBadRequest, "malformed height")
	}
	return chainhash.Height(v), nil
}

// writeJSON is the one response path every handler above funnels through:
// a taliroerr.Error's Envelope maps onto an HTTP status, its Public message
// is surfaced, and its Private detail stays out of the response body.
func writeJSON(w http.ResponseWriter, v interface{}, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(statusFor(err))
		_ = json.NewEncoder(w).Encode(map[string]string{"error": publicMessage(err)})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	e, ok := err.(*taliroerr.Error)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Envelope {
	case taliroerr.EnvelopeBadRequest:
		return http.StatusBadRequest
	case taliroerr.EnvelopeNotFound:
		return http.StatusNotFound
	case taliroerr.EnvelopeUnauthorized:
		return http.StatusUnauthorized
	case taliroerr.EnvelopeForbidden:
		return http.StatusForbidden
	case taliroerr.EnvelopeConflict:
		return http.StatusConflict
	case taliroerr.EnvelopePreconditionFailed:
		return http.StatusPreconditionFailed
	case taliroerr.EnvelopeConfiguration, taliroerr.EnvelopeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	if e, ok := err.(*taliroerr.Error); ok && e.Public != "" {
		return e.Public
	}
	return "internal error"
}
