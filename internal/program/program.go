// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package program implements the vault program: one account per owner at
// an address derived from ("vault", owner) and the program id, created
// exactly once by initialize_vault.
package program

import (
	"fmt"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/pda"
	"github.com/aplane-algo/apvault/internal/vault"
)

// DefaultProgramID is the address the vault program is deployed at unless
// configured otherwise.
var DefaultProgramID = address.MustParse("C1Hj34Yrhc2R4vnFbRtABeoRLozAnx9VhgpScg3hHuHp")

// Program processes vault instructions. It holds no state; every call is a
// function of the invocation context.
type Program struct{}

// New returns the vault program.
func New() *Program {
	return &Program{}
}

// Process dispatches on the instruction discriminator.
func (p *Program) Process(ctx *ledger.InvokeContext) error {
	kind, err := vault.DecodeInstruction(ctx.Data)
	if err != nil {
		return err
	}
	switch kind {
	case vault.InitializeVault:
		return p.initializeVault(ctx)
	default:
		return fmt.Errorf("%w: %s", vault.ErrUnknownInstruction, kind)
	}
}

// initializeVault moves the authority's vault from NonExistent to
// Initialized. Checks run in a fixed order and any failure aborts the
// whole transaction.
func (p *Program) initializeVault(ctx *ledger.InvokeContext) error {
	ctx.Log("Instruction: InitializeVault")

	if len(ctx.Accounts) < vault.InitializeAccountCount {
		return fmt.Errorf("%w: expected %d, got %d", ErrNotEnoughAccounts, vault.InitializeAccountCount, len(ctx.Accounts))
	}
	vaultAddr := ctx.Accounts[vault.InitializeAccountVault].Address
	authority := ctx.Accounts[vault.InitializeAccountAuthority].Address
	systemProgram := ctx.Accounts[vault.InitializeAccountSystemProgram].Address

	if !ctx.IsSigner(authority) {
		return fmt.Errorf("%w: authority %s", ledger.ErrMissingSignature, authority)
	}
	if systemProgram != ledger.SystemProgramID {
		return fmt.Errorf("%w: %s", ErrInvalidSystemProgram, systemProgram)
	}

	// The seeds come from the signer and this program's own id, never from
	// the request, so a caller cannot steer the derivation.
	seeds := pda.VaultSeeds(authority)
	_, bump, err := pda.FindProgramAddress(seeds, ctx.ProgramID)
	if err != nil {
		return fmt.Errorf("vault derivation for %s: %w", authority, err)
	}
	if err := pda.VerifyProgramAddress(seeds, bump, ctx.ProgramID, vaultAddr); err != nil {
		return err
	}

	current, err := ctx.Account(vaultAddr)
	if err != nil {
		return err
	}
	if !current.IsUnallocated() {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, vaultAddr)
	}

	now := ctx.Now().Unix()
	if now <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidClock, now)
	}

	ctx.Log("Initializing Vault PDA...")

	// Pre-funded lamports count toward the minimum balance.
	var topUp uint64
	if required := ctx.MinimumBalance(vault.AccountSize); required > current.Lamports {
		topUp = required - current.Lamports
	}
	create := ledger.NewCreateAccountInstruction(authority, vaultAddr, topUp, vault.AccountSize, ctx.ProgramID)
	if err := ctx.InvokeSigned(create, pda.SignerSeeds(authority, bump)); err != nil {
		return fmt.Errorf("allocate vault %s: %w", vaultAddr, err)
	}

	record := vault.Account{
		Owner:     authority,
		CreatedAt: now,
		Value:     0,
		Bump:      bump,
	}
	if err := record.Validate(); err != nil {
		return err
	}
	data, err := record.MarshalBinary()
	if err != nil {
		return err
	}

	allocated, err := ctx.Account(vaultAddr)
	if err != nil {
		return err
	}
	allocated.Data = data
	if err := ctx.SetAccount(vaultAddr, allocated); err != nil {
		return err
	}

	ctx.Log("Vault PDA initialized successfully:")
	ctx.Log(" Owner: %s", record.Owner)
	ctx.Log(" Created At: %d", record.CreatedAt)
	ctx.Log(" Value: %d", record.Value)
	return nil
}

// NewInitializeVaultInstruction builds initialize_vault for authority.
// It returns the vault address and bump the program will re-derive.
func NewInitializeVaultInstruction(programID, authority address.Address) (ledger.Instruction, address.Address, uint8, error) {
	vaultAddr, bump, err := pda.DeriveVault(authority, programID)
	if err != nil {
		return ledger.Instruction{}, address.Address{}, 0, err
	}
	return NewInitializeVaultInstructionFor(programID, authority, vaultAddr), vaultAddr, bump, nil
}

// NewInitializeVaultInstructionFor builds initialize_vault naming an
// explicit vault account. The program rejects any account other than the
// canonical derivation.
func NewInitializeVaultInstructionFor(programID, authority, vaultAddr address.Address) ledger.Instruction {
	accounts := make([]ledger.AccountMeta, vault.InitializeAccountCount)
	accounts[vault.InitializeAccountVault] = ledger.AccountMeta{Address: vaultAddr, IsWritable: true}
	accounts[vault.InitializeAccountAuthority] = ledger.AccountMeta{Address: authority, IsSigner: true, IsWritable: true}
	accounts[vault.InitializeAccountSystemProgram] = ledger.AccountMeta{Address: ledger.SystemProgramID}

	return ledger.Instruction{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      vault.EncodeInitializeVault(),
	}
}
