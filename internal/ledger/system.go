// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/aplane-algo/apvault/internal/address"
)

// System instruction tags (little-endian uint32 prefix).
const (
	systemCreateAccount uint32 = 0
	systemTransfer      uint32 = 2
)

const (
	createAccountDataSize = 4 + 8 + 8 + address.Size
	transferDataSize      = 4 + 8
)

// NewCreateAccountInstruction allocates space bytes at newAccount, owned by
// owner, moving lamports from payer. Both payer and newAccount must sign.
// newAccount may already hold lamports as long as it holds no data.
func NewCreateAccountInstruction(payer, newAccount address.Address, lamports uint64, space uint64, owner address.Address) Instruction {
	data := make([]byte, createAccountDataSize)
	binary.LittleEndian.PutUint32(data[0:], systemCreateAccount)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[12:], space)
	copy(data[20:], owner[:])

	return Instruction{
		ProgramID: SystemProgramID,
		Data:      data,
		Accounts: []AccountMeta{
			{Address: payer, IsSigner: true, IsWritable: true},
			{Address: newAccount, IsSigner: true, IsWritable: true},
		},
	}
}

// NewTransferInstruction moves lamports between system accounts.
func NewTransferInstruction(from, to address.Address, lamports uint64) Instruction {
	data := make([]byte, transferDataSize)
	binary.LittleEndian.PutUint32(data[0:], systemTransfer)
	binary.LittleEndian.PutUint64(data[4:], lamports)

	return Instruction{
		ProgramID: SystemProgramID,
		Data:      data,
		Accounts: []AccountMeta{
			{Address: from, IsSigner: true, IsWritable: true},
			{Address: to, IsSigner: false, IsWritable: true},
		},
	}
}

type systemProgram struct{}

func (systemProgram) Process(ctx *InvokeContext) error {
	if len(ctx.Data) < 4 {
		return fmt.Errorf("%w: system instruction too short", ErrInvalidInstructionData)
	}
	switch tag := binary.LittleEndian.Uint32(ctx.Data); tag {
	case systemCreateAccount:
		return createAccount(ctx)
	case systemTransfer:
		return transfer(ctx)
	default:
		return fmt.Errorf("%w: system instruction %d", ErrInvalidInstructionData, tag)
	}
}

func createAccount(ctx *InvokeContext) error {
	if len(ctx.Data) != createAccountDataSize {
		return fmt.Errorf("%w: create_account expects %d bytes", ErrInvalidInstructionData, createAccountDataSize)
	}
	if len(ctx.Accounts) < 2 {
		return fmt.Errorf("%w: create_account expects 2 accounts", ErrInvalidInstructionData)
	}
	lamports := binary.LittleEndian.Uint64(ctx.Data[4:])
	space := binary.LittleEndian.Uint64(ctx.Data[12:])
	var owner address.Address
	copy(owner[:], ctx.Data[20:])

	payerAddr := ctx.Accounts[0].Address
	newAddr := ctx.Accounts[1].Address
	if payerAddr == newAddr {
		return fmt.Errorf("%w: payer and new account are the same", ErrInvalidInstructionData)
	}
	if !ctx.IsSigner(payerAddr) {
		return fmt.Errorf("%w: payer %s", ErrMissingSignature, payerAddr)
	}
	if !ctx.IsSigner(newAddr) {
		return fmt.Errorf("%w: new account %s", ErrMissingSignature, newAddr)
	}

	payer, err := ctx.Account(payerAddr)
	if err != nil {
		return err
	}
	newAcc, err := ctx.Account(newAddr)
	if err != nil {
		return err
	}
	if !newAcc.IsUnallocated() {
		return fmt.Errorf("%w: %s", ErrAccountInUse, newAddr)
	}
	if space > MaxAccountDataSize {
		return fmt.Errorf("%w: %d bytes exceeds maximum of %d", ErrAllocationFailed, space, MaxAccountDataSize)
	}
	if payer.Lamports < lamports {
		return fmt.Errorf("%w: payer %s has %d lamports, needs %d", ErrAllocationFailed, payerAddr, payer.Lamports, lamports)
	}
	if !payer.IsUnallocated() {
		return fmt.Errorf("%w: payer %s carries data", ErrAllocationFailed, payerAddr)
	}

	payer.Lamports -= lamports
	newAcc.Lamports += lamports
	newAcc.Data = make([]byte, space)
	newAcc.Owner = owner

	if err := ctx.SetAccount(payerAddr, payer); err != nil {
		return err
	}
	if err := ctx.SetAccount(newAddr, newAcc); err != nil {
		return err
	}
	ctx.Log("create_account %s space=%d owner=%s", newAddr, space, owner)
	return nil
}

func transfer(ctx *InvokeContext) error {
	if len(ctx.Data) != transferDataSize {
		return fmt.Errorf("%w: transfer expects %d bytes", ErrInvalidInstructionData, transferDataSize)
	}
	if len(ctx.Accounts) < 2 {
		return fmt.Errorf("%w: transfer expects 2 accounts", ErrInvalidInstructionData)
	}
	lamports := binary.LittleEndian.Uint64(ctx.Data[4:])
	fromAddr := ctx.Accounts[0].Address
	toAddr := ctx.Accounts[1].Address
	if !ctx.IsSigner(fromAddr) {
		return fmt.Errorf("%w: %s", ErrMissingSignature, fromAddr)
	}

	from, err := ctx.Account(fromAddr)
	if err != nil {
		return err
	}
	if !from.IsUnallocated() {
		return fmt.Errorf("%w: transfer source %s carries data", ErrInvalidInstructionData, fromAddr)
	}
	if from.Lamports < lamports {
		return fmt.Errorf("%w: %s has %d lamports, needs %d", ErrInsufficientFunds, fromAddr, from.Lamports, lamports)
	}
	if fromAddr == toAddr {
		return nil
	}
	to, err := ctx.Account(toAddr)
	if err != nil {
		return err
	}

	from.Lamports -= lamports
	to.Lamports += lamports
	if err := ctx.SetAccount(fromAddr, from); err != nil {
		return err
	}
	return ctx.SetAccount(toAddr, to)
}
