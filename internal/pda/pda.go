// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package pda derives program addresses: account addresses computed from
// seed material and a program id rather than from a keypair.
//
// A candidate is SHA-256(seeds || program id || marker). Candidates that
// decode as an edwards25519 point are rejected, so no private key can ever
// sign for a derived address. FindProgramAddress searches a one-byte nonce
// (the bump) downward from 255 and returns the first off-curve candidate.
package pda

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/aplane-algo/apvault/internal/address"
)

const (
	// MaxSeedLen is the maximum length of a single seed.
	MaxSeedLen = 32
	// MaxSeeds is the maximum number of seeds, bump included.
	MaxSeeds = 16
)

// VaultSeed is the domain separation prefix for vault accounts.
var VaultSeed = []byte("vault")

var derivedAddressMarker = []byte("ProgramDerivedAddress")

// CreateProgramAddress hashes seeds and programID into an address.
// It fails with ErrOnCurve if the result is a valid public key.
func CreateProgramAddress(seeds [][]byte, programID address.Address) (address.Address, error) {
	if len(seeds) > MaxSeeds {
		return address.Address{}, fmt.Errorf("%w: %d > %d", ErrMaxSeeds, len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return address.Address{}, fmt.Errorf("%w: seed %d is %d bytes", ErrMaxSeedLength, i, len(seed))
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write(derivedAddressMarker)

	var addr address.Address
	copy(addr[:], h.Sum(nil))

	if addr.IsOnCurve() {
		return address.Address{}, ErrOnCurve
	}
	return addr, nil
}

// FindProgramAddress returns the canonical derived address for seeds and
// its bump.
func FindProgramAddress(seeds [][]byte, programID address.Address) (address.Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	bump := []byte{0}
	for nonce := 255; nonce >= 0; nonce-- {
		bump[0] = byte(nonce)
		withBump[len(seeds)] = bump

		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, byte(nonce), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return address.Address{}, 0, err
		}
	}
	return address.Address{}, 0, ErrNoViableBump
}

// VerifyProgramAddress recomputes the address for seeds and bump and
// compares it with claimed.
func VerifyProgramAddress(seeds [][]byte, bump uint8, programID, claimed address.Address) error {
	withBump := append(append([][]byte{}, seeds...), []byte{bump})
	addr, err := CreateProgramAddress(withBump, programID)
	if err != nil {
		return err
	}
	if addr != claimed {
		return fmt.Errorf("%w: expected %s, got %s", ErrAddressMismatch, addr, claimed)
	}
	return nil
}

// VaultSeeds returns the seeds of owner's vault, without the bump.
func VaultSeeds(owner address.Address) [][]byte {
	return [][]byte{VaultSeed, owner.Bytes()}
}

// DeriveVault predicts the vault address and bump for owner under programID.
func DeriveVault(owner, programID address.Address) (address.Address, uint8, error) {
	return FindProgramAddress(VaultSeeds(owner), programID)
}

// SignerSeeds returns the seeds, bump included, that authorize the vault
// address in a signed cross-program call.
func SignerSeeds(owner address.Address, bump uint8) [][]byte {
	return [][]byte{VaultSeed, owner.Bytes(), {bump}}
}
