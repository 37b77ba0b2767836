// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package vault

import (
	"bytes"
	"fmt"
)

// InstructionKind enumerates the vault program's instructions.
type InstructionKind int

const (
	// InitializeVault creates the caller's vault record.
	InitializeVault InstructionKind = iota + 1
)

func (k InstructionKind) String() string {
	switch k {
	case InitializeVault:
		return "initialize_vault"
	default:
		return fmt.Sprintf("instruction(%d)", int(k))
	}
}

// InitializeVaultDiscriminator prefixes initialize_vault instruction data.
var InitializeVaultDiscriminator = discriminator("global:initialize_vault")

// Instruction account positions for initialize_vault.
const (
	InitializeAccountVault = iota
	InitializeAccountAuthority
	InitializeAccountSystemProgram

	InitializeAccountCount
)

// EncodeInitializeVault returns the instruction data for initialize_vault.
// The instruction carries no arguments; the vault, authority and system
// program are passed as accounts.
func EncodeInitializeVault() []byte {
	var offset int
	data := make([]byte, len(InitializeVaultDiscriminator))
	putDiscriminator(data, InitializeVaultDiscriminator, &offset)
	return data
}

// DecodeInstruction identifies instruction data.
func DecodeInstruction(data []byte) (InstructionKind, error) {
	if len(data) < DiscriminatorSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrUnknownInstruction, len(data))
	}
	switch {
	case bytes.Equal(data[:DiscriminatorSize], InitializeVaultDiscriminator):
		if len(data) != DiscriminatorSize {
			return 0, fmt.Errorf("%w: initialize_vault takes no arguments, got %d trailing bytes",
				ErrUnknownInstruction, len(data)-DiscriminatorSize)
		}
		return InitializeVault, nil
	default:
		return 0, fmt.Errorf("%w: discriminator %x", ErrUnknownInstruction, data[:DiscriminatorSize])
	}
}
