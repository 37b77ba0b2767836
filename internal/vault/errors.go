// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package vault

import "errors"

var (
	// ErrSchemaMismatch indicates stored bytes are not a vault record
	// (wrong length or discriminator).
	ErrSchemaMismatch = errors.New("account data does not match vault schema")

	// ErrInvalidAccount indicates a decoded record violates an invariant.
	ErrInvalidAccount = errors.New("invalid vault account")

	// ErrUnknownInstruction indicates instruction data with an unrecognized discriminator.
	ErrUnknownInstruction = errors.New("unknown instruction")
)
