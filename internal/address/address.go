// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package address defines the 32-byte account address used throughout the
// ledger and its base58 text form.
package address

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Size is the byte length of an address.
const Size = 32

// ErrInvalidAddress is returned when text or bytes do not form a 32-byte address.
var ErrInvalidAddress = errors.New("invalid address")

// Address identifies a ledger account. Signer accounts use their ed25519
// public key directly; program derived accounts use a hash that is not a
// curve point.
type Address [Size]byte

// Zero is the all-zero address.
var Zero Address

// Parse decodes a base58 address.
func Parse(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return FromBytes(raw)
}

// MustParse is Parse for package-level constants. It panics on malformed input.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBytes copies a 32-byte slice into an Address.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Size {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, Size, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// FromPublicKey returns the address of a signer key.
func FromPublicKey(pk ed25519.PublicKey) Address {
	var a Address
	copy(a[:], pk)
	return a
}

// String returns the base58 form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, a[:])
	return b
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// Compare orders addresses bytewise.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// PublicKey returns a as an ed25519 public key for signature checks.
func (a Address) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(a.Bytes())
}

// MarshalText implements encoding.TextMarshaler (used by YAML snapshots).
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// IsOnCurve returns true if the 32-byte value decodes to a valid edwards25519
// curve point (i.e., could be an ed25519 public key), and false otherwise.
func IsOnCurve(b []byte) bool {
	if len(b) != Size {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// IsOnCurve reports whether a could be a signer's public key.
func (a Address) IsOnCurve() bool {
	return IsOnCurve(a[:])
}
