// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSignature indicates a required signer did not sign.
	ErrMissingSignature = errors.New("missing required signature")

	// ErrInvalidSignature indicates a signature failed verification.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrUnexpectedSigner indicates a key was offered that the transaction does not require.
	ErrUnexpectedSigner = errors.New("key is not a required signer")

	// ErrUnknownProgram indicates an instruction targets an unregistered program.
	ErrUnknownProgram = errors.New("unknown program")

	// ErrAccountNotFound indicates no account exists at an address.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountInUse indicates an allocation target already holds data or
	// belongs to a program.
	ErrAccountInUse = errors.New("account already in use")

	// ErrAllocationFailed indicates storage could not be reserved, for
	// example because the payer cannot fund the minimum balance.
	ErrAllocationFailed = errors.New("account allocation failed")

	// ErrInsufficientFunds indicates a lamport debit larger than the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrReadonlyAccount indicates a write to an account not marked writable.
	ErrReadonlyAccount = errors.New("account is not writable")

	// ErrExternalModification indicates a program changed an account it does not own.
	ErrExternalModification = errors.New("program modified an account it does not own")

	// ErrAccountNotInTransaction indicates access to an account the
	// transaction did not declare.
	ErrAccountNotInTransaction = errors.New("account not declared by transaction")

	// ErrCallDepth indicates cross-program invocations nested too deeply.
	ErrCallDepth = errors.New("cross-program invocation depth exceeded")

	// ErrInvalidInstructionData indicates malformed instruction data.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrEmptyTransaction indicates a transaction with no instructions.
	ErrEmptyTransaction = errors.New("transaction has no instructions")
)

// TxError reports the instruction that aborted a transaction. Nothing the
// transaction wrote is committed.
type TxError struct {
	Index int
	Err   error
	Logs  []string
}

func (e *TxError) Error() string {
	return fmt.Sprintf("instruction %d failed: %v", e.Index, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}
