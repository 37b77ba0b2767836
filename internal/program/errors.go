// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package program

import (
	"errors"

	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/pda"
)

var (
	// ErrAddressMismatch indicates the named vault account is not the
	// canonical derivation for the signing authority and this program.
	ErrAddressMismatch = pda.ErrAddressMismatch

	// ErrAlreadyInitialized indicates the vault account already holds a record.
	ErrAlreadyInitialized = errors.New("vault already initialized")

	// ErrAllocationFailed indicates the system program could not allocate
	// the vault's storage.
	ErrAllocationFailed = ledger.ErrAllocationFailed

	// ErrNotEnoughAccounts indicates the instruction omitted required accounts.
	ErrNotEnoughAccounts = errors.New("not enough account keys")

	// ErrInvalidSystemProgram indicates the allocator account is not the system program.
	ErrInvalidSystemProgram = errors.New("invalid system program account")

	// ErrInvalidClock indicates the ledger clock reported a non-positive time.
	ErrInvalidClock = errors.New("clock reading is not positive")
)
