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

package p2p

import "github.com/kon14/taliro/internal/taliroerr"

var errEmptyGossipEvent = taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "empty gossip event payload")

var errNotGetBlockByHeightRequest = taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "payload is not a GetBlockByHeight request")

var errEmptyResponse = taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "empty response payload")

var errNotGetBlockByHeightResponse = taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "payload is not a GetBlockByHeight response")

var errNotGetBlockchainTipRequest = taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "payload is not a GetBlockchainTip request")

var errNotGetBlockchainTipResponse = taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "malformed GetBlockchainTip response")

var errNotGetBlocksByHeightRangeRequest = taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "payload is not a GetBlocksByHeightRange request")

var errNotGetBlocksByHeightRangeResponse = taliroerr.New(taliroerr.GroupNetwork, taliroerr.KindProtocolError, taliroerr.EnvelopeBadRequest, "malformed GetBlocksByHeightRange response")
