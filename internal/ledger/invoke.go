// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package ledger

import (
	"bytes"
	"fmt"
	"time"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/pda"
)

// MaxInvokeDepth limits nested cross-program invocations.
const MaxInvokeDepth = 4

// txState is the copy-on-write view a transaction executes against.
type txState struct {
	ledger   *Ledger
	tx       *Transaction
	declared map[address.Address]bool
	changes  map[address.Address]*Account
	logs     []string
	now      time.Time
}

func newTxState(l *Ledger, tx *Transaction, set []accountLock, now time.Time) *txState {
	declared := make(map[address.Address]bool, len(set))
	for _, al := range set {
		declared[al.addr] = true
	}
	return &txState{
		ledger:   l,
		tx:       tx,
		declared: declared,
		changes:  make(map[address.Address]*Account),
		now:      now,
	}
}

func (s *txState) load(addr address.Address) (*Account, error) {
	if !s.declared[addr] {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotInTransaction, addr)
	}
	if acc, ok := s.changes[addr]; ok {
		return acc.Clone(), nil
	}
	return s.ledger.load(addr), nil
}

func (s *txState) lamports(metas []AccountMeta) (uint64, error) {
	var total uint64
	seen := make(map[address.Address]bool, len(metas))
	for _, meta := range metas {
		if seen[meta.Address] {
			continue
		}
		seen[meta.Address] = true
		acc, err := s.load(meta.Address)
		if err != nil {
			return 0, err
		}
		total += acc.Lamports
	}
	return total, nil
}

func (s *txState) log(line string) {
	s.logs = append(s.logs, line)
	s.ledger.logger.Debug(line)
}

// execute runs a top-level instruction.
func (s *txState) execute(ix Instruction) error {
	signers := make(map[address.Address]bool)
	for _, meta := range ix.Accounts {
		if meta.IsSigner {
			if !s.tx.isSigner(meta.Address) {
				return fmt.Errorf("%w: %s", ErrMissingSignature, meta.Address)
			}
			signers[meta.Address] = true
		}
	}

	before, err := s.lamports(ix.Accounts)
	if err != nil {
		return err
	}
	if err := s.invoke(ix, signers, 1); err != nil {
		return err
	}
	after, err := s.lamports(ix.Accounts)
	if err != nil {
		return err
	}
	if before != after {
		return fmt.Errorf("%w: lamports changed from %d to %d", ErrExternalModification, before, after)
	}
	return nil
}

func (s *txState) invoke(ix Instruction, signers map[address.Address]bool, depth int) error {
	if depth > MaxInvokeDepth {
		return ErrCallDepth
	}
	p, ok := s.ledger.program(ix.ProgramID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID)
	}

	s.log(fmt.Sprintf("Program %s invoke [%d]", ix.ProgramID, depth))
	ctx := &InvokeContext{
		ProgramID: ix.ProgramID,
		Accounts:  ix.Accounts,
		Data:      ix.Data,
		state:     s,
		signers:   signers,
		depth:     depth,
	}
	if err := p.Process(ctx); err != nil {
		s.log(fmt.Sprintf("Program %s failed: %v", ix.ProgramID, err))
		return err
	}
	s.log(fmt.Sprintf("Program %s success", ix.ProgramID))
	return nil
}

// InvokeContext is what a program sees while processing one instruction.
type InvokeContext struct {
	ProgramID address.Address
	Accounts  []AccountMeta
	Data      []byte

	state   *txState
	signers map[address.Address]bool
	depth   int
}

// IsSigner reports whether addr authorized this invocation, either by
// transaction signature or as a program derived signer.
func (c *InvokeContext) IsSigner(addr address.Address) bool {
	return c.signers[addr]
}

// Now returns the transaction's clock reading.
func (c *InvokeContext) Now() time.Time {
	return c.state.now
}

// MinimumBalance returns the lamports an account of space bytes must hold.
func (c *InvokeContext) MinimumBalance(space int) uint64 {
	return c.state.ledger.MinimumBalance(space)
}

// Log appends a program log line.
func (c *InvokeContext) Log(format string, args ...any) {
	c.state.log("Program log: " + fmt.Sprintf(format, args...))
}

// Account returns a copy of an account passed to this instruction.
// Absent accounts read as zero lamports, no data, owned by the system program.
func (c *InvokeContext) Account(addr address.Address) (*Account, error) {
	if _, ok := c.meta(addr); !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotInTransaction, addr)
	}
	return c.state.load(addr)
}

// SetAccount replaces an account's state. Only writable accounts may change;
// only the owning program may change data, owner or debit lamports.
func (c *InvokeContext) SetAccount(addr address.Address, acc *Account) error {
	meta, ok := c.meta(addr)
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotInTransaction, addr)
	}
	pre, err := c.state.load(addr)
	if err != nil {
		return err
	}
	if !meta.IsWritable {
		return fmt.Errorf("%w: %s", ErrReadonlyAccount, addr)
	}
	if pre.Executable {
		return fmt.Errorf("%w: %s is executable", ErrExternalModification, addr)
	}
	if pre.Owner != c.ProgramID {
		switch {
		case pre.Owner != acc.Owner:
			return fmt.Errorf("%w: owner of %s", ErrExternalModification, addr)
		case !bytes.Equal(pre.Data, acc.Data):
			return fmt.Errorf("%w: data of %s", ErrExternalModification, addr)
		case acc.Lamports < pre.Lamports:
			return fmt.Errorf("%w: debit of %s", ErrExternalModification, addr)
		}
	}
	if acc.Executable != pre.Executable {
		return fmt.Errorf("%w: executable flag of %s", ErrExternalModification, addr)
	}
	c.state.changes[addr] = acc.Clone()
	return nil
}

// Invoke calls another program with this invocation's privileges.
func (c *InvokeContext) Invoke(ix Instruction) error {
	return c.InvokeSigned(ix)
}

// InvokeSigned calls another program. Each entry of signerSeeds is the full
// seed list (bump included) of an address derived from the calling program;
// those addresses are treated as signers of the inner instruction.
func (c *InvokeContext) InvokeSigned(ix Instruction, signerSeeds ...[][]byte) error {
	if _, ok := c.meta(ix.ProgramID); !ok {
		return fmt.Errorf("%w: program %s", ErrAccountNotInTransaction, ix.ProgramID)
	}

	derived := make(map[address.Address]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := pda.CreateProgramAddress(seeds, c.ProgramID)
		if err != nil {
			return fmt.Errorf("invalid signer seeds: %w", err)
		}
		derived[addr] = true
	}

	signers := make(map[address.Address]bool)
	for _, meta := range ix.Accounts {
		outer, ok := c.meta(meta.Address)
		if !ok {
			return fmt.Errorf("%w: %s", ErrAccountNotInTransaction, meta.Address)
		}
		if meta.IsWritable && !outer.IsWritable {
			return fmt.Errorf("%w: %s escalated to writable", ErrReadonlyAccount, meta.Address)
		}
		if meta.IsSigner {
			if !c.signers[meta.Address] && !derived[meta.Address] {
				return fmt.Errorf("%w: %s", ErrMissingSignature, meta.Address)
			}
			signers[meta.Address] = true
		}
	}
	return c.state.invoke(ix, signers, c.depth+1)
}

func (c *InvokeContext) meta(addr address.Address) (AccountMeta, bool) {
	var found AccountMeta
	ok := false
	for _, m := range c.Accounts {
		if m.Address == addr {
			found.Address = addr
			found.IsSigner = found.IsSigner || m.IsSigner
			found.IsWritable = found.IsWritable || m.IsWritable
			ok = true
		}
	}
	if !ok && addr == c.ProgramID {
		return AccountMeta{Address: addr}, true
	}
	return found, ok
}
