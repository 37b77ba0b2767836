// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package vault defines the on-ledger vault record and the instruction
// encoding understood by the vault program.
//
// Record layout (little-endian, no padding):
//
//	offset	| size	| field
//	_______________________________________________
//	     0	|    8	| discriminator
//	     8	|   32	| owner
//	    40	|    8	| created_at (int64, unix seconds)
//	    48	|    8	| value (uint64)
//	    56	|    1	| bump
package vault

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/aplane-algo/apvault/internal/address"
)

// DiscriminatorSize is the length of the leading type tag.
const DiscriminatorSize = 8

// AccountSize is the exact storage size of a vault record.
const AccountSize = DiscriminatorSize + address.Size + 8 + 8 + 1

// AccountDiscriminator tags vault records among other account kinds.
var AccountDiscriminator = discriminator("account:VaultData")

// Account is the decoded vault record.
type Account struct {
	Owner     address.Address
	CreatedAt int64
	Value     uint64
	Bump      uint8
}

// MarshalBinary encodes a into its fixed-size layout.
func (a *Account) MarshalBinary() ([]byte, error) {
	var offset int
	data := make([]byte, AccountSize)

	putDiscriminator(data, AccountDiscriminator, &offset)
	putAddress(data, a.Owner, &offset)
	putInt64(data, a.CreatedAt, &offset)
	putUint64(data, a.Value, &offset)
	putUint8(data, a.Bump, &offset)

	return data, nil
}

// Decode parses a vault record. Any length or discriminator mismatch
// returns ErrSchemaMismatch.
func Decode(data []byte) (*Account, error) {
	if len(data) != AccountSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrSchemaMismatch, AccountSize, len(data))
	}
	if !bytes.Equal(data[:DiscriminatorSize], AccountDiscriminator) {
		return nil, fmt.Errorf("%w: discriminator %x", ErrSchemaMismatch, data[:DiscriminatorSize])
	}

	var a Account
	offset := DiscriminatorSize
	getAddress(data, &a.Owner, &offset)
	getInt64(data, &a.CreatedAt, &offset)
	getUint64(data, &a.Value, &offset)
	getUint8(data, &a.Bump, &offset)
	return &a, nil
}

// Validate checks the invariants every initialized record satisfies.
func (a *Account) Validate() error {
	if a.Owner.IsZero() {
		return fmt.Errorf("%w: owner is empty", ErrInvalidAccount)
	}
	if a.CreatedAt <= 0 {
		return fmt.Errorf("%w: created_at %d is not positive", ErrInvalidAccount, a.CreatedAt)
	}
	return nil
}

func discriminator(preimage string) []byte {
	sum := sha256.Sum256([]byte(preimage))
	return sum[:DiscriminatorSize]
}

func putDiscriminator(dst, v []byte, offset *int) {
	copy(dst[*offset:], v)
	*offset += len(v)
}

func putAddress(dst []byte, v address.Address, offset *int) {
	copy(dst[*offset:], v[:])
	*offset += address.Size
}

func putInt64(dst []byte, v int64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], uint64(v))
	*offset += 8
}

func putUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], v)
	*offset += 8
}

func putUint8(dst []byte, v uint8, offset *int) {
	dst[*offset] = v
	*offset++
}

func getAddress(src []byte, dst *address.Address, offset *int) {
	copy(dst[:], src[*offset:*offset+address.Size])
	*offset += address.Size
}

func getInt64(src []byte, dst *int64, offset *int) {
	*dst = int64(binary.LittleEndian.Uint64(src[*offset:]))
	*offset += 8
}

func getUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src[*offset:])
	*offset += 8
}

func getUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[*offset]
	*offset++
}
