// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package client

import "errors"

var (
	// ErrVaultNotFound indicates no vault record exists at the address.
	ErrVaultNotFound = errors.New("vault not found")

	// ErrOwnerMismatch indicates an existing vault belongs to someone else.
	ErrOwnerMismatch = errors.New("vault owner does not match signer")

	// ErrWrongProgram indicates the account at a vault address is not owned
	// by the vault program.
	ErrWrongProgram = errors.New("account is not owned by the vault program")
)
