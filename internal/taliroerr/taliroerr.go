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

// Package taliroerr implements the node's error taxonomy (spec §7): typed
// kinds grouped by source, wrapped in an outer envelope that distinguishes
// what's safe to surface externally from what belongs only in logs.
package taliroerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Group names the broad source of a Kind.
type Group string

const (
	GroupBlockValidation       Group = "block_validation"
	GroupTransactionValidation Group = "transaction_validation"
	GroupConsensusValidation   Group = "consensus_validation"
	GroupCryptographic         Group = "cryptographic"
	GroupStorage               Group = "storage"
	GroupNetwork                Group = "network"
	GroupAuthentication        Group = "authentication"
)

// Kind is a specific, named error condition within a Group.
type Kind string

const (
	// BlockValidation
	KindInvalidMerkleRoot    Kind = "invalid_merkle_root"
	KindNoTransactions       Kind = "no_transactions"
	KindDuplicateTransaction Kind = "duplicate_transaction"
	KindGenesisAlreadyExists Kind = "genesis_already_exists"
	KindContinuityMismatch   Kind = "continuity_mismatch"
	KindBlockAlreadyKnown    Kind = "block_already_known"
	KindMultipleCoinbase     Kind = "multiple_coinbase"
	KindInvalidTimestamp     Kind = "invalid_timestamp"
	KindBlockSizeExceeded    Kind = "block_size_exceeded"
	KindDoubleSpending       Kind = "double_spending"

	// TransactionValidation
	KindUtxoNotFound        Kind = "utxo_not_found"
	KindOutputsExceedInputs Kind = "outputs_exceed_inputs"
	KindInvalidSignature    Kind = "invalid_signature"
	KindInvalidOutputAmount Kind = "invalid_output_amount"
	KindEmptyInputs         Kind = "empty_inputs"
	KindEmptyOutputs        Kind = "empty_outputs"

	// ConsensusValidation
	KindInsufficientProofOfWork Kind = "insufficient_proof_of_work"
	KindInvalidDifficulty       Kind = "invalid_difficulty"
	KindInvalidNonce            Kind = "invalid_nonce"
	KindMiningTargetNotMet      Kind = "mining_target_not_met"

	// Cryptographic
	KindHashLengthMismatch   Kind = "hash_length_mismatch"
	KindHashConversionFailed Kind = "hash_conversion_failed"
	KindEncodingFailed       Kind = "encoding_failed"
	KindDecodingFailed       Kind = "decoding_failed"
	KindSignatureVerifyFailed Kind = "signature_verification_failed"

	// Storage
	KindStorageGeneric           Kind = "storage_generic"
	KindStorageTransactionFailed Kind = "storage_transaction_failed"
	KindStorageReadFailed        Kind = "storage_read_failed"
	KindStorageWriteFailed       Kind = "storage_write_failed"
	KindInvalidTransactionContext Kind = "invalid_transaction_context"

	// Network
	KindInvalidMultiaddr    Kind = "invalid_multiaddr"
	KindPeerConnectionFailed Kind = "peer_connection_failed"
	KindProtocolError       Kind = "protocol_error"

	// Authentication
	KindInvalidCredential Kind = "invalid_credential"
)

// Envelope classifies an error for the caller-facing boundary.
type Envelope string

const (
	EnvelopeInternal           Envelope = "internal"
	EnvelopeConfiguration      Envelope = "configuration"
	EnvelopeBadRequest         Envelope = "bad_request"
	EnvelopeNotFound           Envelope = "not_found"
	EnvelopeUnauthorized       Envelope = "unauthorized"
	EnvelopeForbidden          Envelope = "forbidden"
	EnvelopeConflict           Envelope = "conflict"
	EnvelopePreconditionFailed Envelope = "precondition_failed"
)

// Error is the taxonomy's error type: a Kind within a Group, an Envelope
// classification, public info safe to surface externally, and optional
// private info kept only for logs.
type Error struct {
	Group    Group
	Kind     Kind
	Envelope Envelope
	Public   string
	private  string
	cause    error
}

func (e *Error) Error() string {
	if e.Public != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Public)
	}
	return string(e.Kind)
}

// Cause implements the github.com/pkg/errors Causer interface.
func (e *Error) Cause() error { return e.cause }

// Unwrap supports errors.Is / errors.As from the standard library.
func (e *Error) Unwrap() error { return e.cause }

// Private returns the log-only detail, falling back to the wrapped cause.
func (e *Error) Private() string {
	if e.private != "" {
		return e.private
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return ""
}

// New builds an Error with no wrapped cause.
func New(group Group, kind Kind, envelope Envelope, public string) *Error {
	return &Error{Group: group, Kind: kind, Envelope: envelope, Public: public}
}

// Wrap attaches an Error taxonomy to an underlying cause, keeping the cause
// out of the public-facing message but preserving it for logs via Private().
func Wrap(cause error, group Group, kind Kind, envelope Envelope, public string) *Error {
	return &Error{Group: group, Kind: kind, Envelope: envelope, Public: public, private: cause.Error(), cause: errors.WithStack(cause)}
}

// Is reports whether err is a taxonomy Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Storage-group convenience constructors, used pervasively by internal/repo.
func StorageRead(cause error) *Error {
	return Wrap(cause, GroupStorage, KindStorageReadFailed, EnvelopeInternal, "storage read failed")
}

func StorageWrite(cause error) *Error {
	return Wrap(cause, GroupStorage, KindStorageWriteFailed, EnvelopeInternal, "storage write failed")
}

func StorageTxn(cause error) *Error {
	return Wrap(cause, GroupStorage, KindStorageTransactionFailed, EnvelopeInternal, "storage transaction failed")
}
