// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package pda

import "errors"

var (
	// ErrOnCurve indicates the seeds hash to a valid ed25519 public key,
	// which a derived address must never be.
	ErrOnCurve = errors.New("derived address is on the ed25519 curve")

	// ErrNoViableBump is returned when no nonce in 0..255 yields an off-curve address.
	ErrNoViableBump = errors.New("unable to find a viable program address bump")

	// ErrMaxSeedLength indicates a single seed longer than MaxSeedLen.
	ErrMaxSeedLength = errors.New("seed exceeds maximum length")

	// ErrMaxSeeds indicates more than MaxSeeds seeds were supplied.
	ErrMaxSeeds = errors.New("too many seeds")

	// ErrAddressMismatch indicates a claimed address differs from the recomputed derivation.
	ErrAddressMismatch = errors.New("address does not match derivation")
)
