// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package ledger

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/mr-tron/base58"

	"github.com/aplane-algo/apvault/internal/address"
)

// AccountMeta names an account an instruction reads or writes.
type AccountMeta struct {
	Address    address.Address
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program call.
type Instruction struct {
	ProgramID address.Address
	Accounts  []AccountMeta
	Data      []byte
}

// Transaction groups instructions that commit or fail together.
type Transaction struct {
	Instructions []Instruction
	// Signers lists the required signers in first-seen order.
	Signers    []address.Address
	Signatures [][]byte
}

// NewTransaction builds an unsigned transaction. The required signers are
// collected from the instruction account metas.
func NewTransaction(instructions ...Instruction) *Transaction {
	tx := &Transaction{Instructions: instructions}
	seen := make(map[address.Address]bool)
	for _, ix := range instructions {
		for _, meta := range ix.Accounts {
			if meta.IsSigner && !seen[meta.Address] {
				seen[meta.Address] = true
				tx.Signers = append(tx.Signers, meta.Address)
			}
		}
	}
	tx.Signatures = make([][]byte, len(tx.Signers))
	return tx
}

// Message returns the bytes every signer signs.
func (tx *Transaction) Message() []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(tx.Signers)))
	for _, s := range tx.Signers {
		buf = append(buf, s[:]...)
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(tx.Instructions)))
	for _, ix := range tx.Instructions {
		buf = append(buf, ix.ProgramID[:]...)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(ix.Accounts)))
		for _, meta := range ix.Accounts {
			buf = append(buf, meta.Address[:]...)
			var flags byte
			if meta.IsSigner {
				flags |= 1
			}
			if meta.IsWritable {
				flags |= 2
			}
			buf = append(buf, flags)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.Data)))
		buf = append(buf, ix.Data...)
	}
	return buf
}

// Sign adds signatures from keys. Every key must belong to a required signer.
func (tx *Transaction) Sign(keys ...ed25519.PrivateKey) error {
	if len(tx.Signatures) != len(tx.Signers) {
		tx.Signatures = make([][]byte, len(tx.Signers))
	}
	msg := tx.Message()
	for _, key := range keys {
		signer := address.FromPublicKey(key.Public().(ed25519.PublicKey))
		idx := tx.signerIndex(signer)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnexpectedSigner, signer)
		}
		tx.Signatures[idx] = ed25519.Sign(key, msg)
	}
	return nil
}

// ID returns the base58 form of the first signature, or "" if unsigned.
func (tx *Transaction) ID() string {
	if len(tx.Signatures) == 0 || len(tx.Signatures[0]) == 0 {
		return ""
	}
	return base58.Encode(tx.Signatures[0])
}

// Verify checks that every required signer produced a valid signature.
func (tx *Transaction) Verify() error {
	if len(tx.Instructions) == 0 {
		return ErrEmptyTransaction
	}
	if len(tx.Signatures) != len(tx.Signers) {
		return fmt.Errorf("%w: %d signatures for %d signers", ErrMissingSignature, len(tx.Signatures), len(tx.Signers))
	}
	msg := tx.Message()
	for i, signer := range tx.Signers {
		sig := tx.Signatures[i]
		if len(sig) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingSignature, signer)
		}
		if !ed25519.Verify(signer.PublicKey(), msg, sig) {
			return fmt.Errorf("%w: %s", ErrInvalidSignature, signer)
		}
	}
	return nil
}

func (tx *Transaction) signerIndex(a address.Address) int {
	for i, s := range tx.Signers {
		if s == a {
			return i
		}
	}
	return -1
}

func (tx *Transaction) isSigner(a address.Address) bool {
	return tx.signerIndex(a) >= 0
}

// lockSet returns every account and program the transaction names, sorted
// and deduplicated, with whether any instruction marks it writable.
func (tx *Transaction) lockSet() []accountLock {
	idx := make(map[address.Address]int)
	var out []accountLock
	add := func(a address.Address, writable bool) {
		if i, ok := idx[a]; ok {
			out[i].writable = out[i].writable || writable
			return
		}
		idx[a] = len(out)
		out = append(out, accountLock{addr: a, writable: writable})
	}
	for _, ix := range tx.Instructions {
		add(ix.ProgramID, false)
		for _, meta := range ix.Accounts {
			add(meta.Address, meta.IsWritable)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].addr.Compare(out[j].addr) < 0 })
	return out
}

// Receipt describes a committed transaction.
type Receipt struct {
	Signature string
	Slot      uint64
	Logs      []string
}
