// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package ledger provides the execution environment vault programs run in:
// an account store, signature-checked transactions that commit atomically,
// per-account locking, a system program that allocates storage, and a clock.
//
// Programs are Go values implementing Processor. There is no bytecode VM.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aplane-algo/apvault/internal/address"
)

// Processor executes one instruction addressed to a program.
type Processor interface {
	Process(ctx *InvokeContext) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx *InvokeContext) error

// Process calls f(ctx).
func (f ProcessorFunc) Process(ctx *InvokeContext) error {
	return f(ctx)
}

// RentConfig sets the minimum balance an allocated account must hold.
// The minimum is (AccountOverhead + space) * LamportsPerByte.
type RentConfig struct {
	LamportsPerByte uint64 `yaml:"lamports_per_byte" description:"Lamports charged per stored byte" default:"6960"`
	AccountOverhead uint64 `yaml:"account_overhead" description:"Bytes of metadata charged per account" default:"128"`
}

// DefaultRentConfig mirrors the rent-exempt minimum of common deployments.
func DefaultRentConfig() RentConfig {
	return RentConfig{LamportsPerByte: 6960, AccountOverhead: 128}
}

// MaxAccountDataSize bounds a single allocation.
const MaxAccountDataSize = 10 * 1024 * 1024

// Ledger holds all accounts and executes transactions against them.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[address.Address]*Account
	programs map[address.Address]Processor

	locks  *lockTable
	slot   atomic.Uint64
	clock  func() time.Time
	rent   RentConfig
	logger *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger) error

// WithClock sets the time source transactions observe.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		l.clock = clock
		return nil
	}
}

// WithRent sets the minimum balance rule.
func WithRent(rent RentConfig) Option {
	return func(l *Ledger) error {
		l.rent = rent
		return nil
	}
}

// WithLogger sets the logger for execution traces.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		l.logger = logger
		return nil
	}
}

// New creates an empty ledger with the system program registered.
func New(opts ...Option) (*Ledger, error) {
	l := &Ledger{
		accounts: make(map[address.Address]*Account),
		programs: make(map[address.Address]Processor),
		locks:    newLockTable(),
		clock:    time.Now,
		rent:     DefaultRentConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.programs[SystemProgramID] = systemProgram{}
	return l, nil
}

// RegisterProgram makes p callable at id and marks the account executable.
func (l *Ledger) RegisterProgram(id address.Address, p Processor) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.programs[id]; exists {
		return fmt.Errorf("program %s already registered", id)
	}
	if acc, ok := l.accounts[id]; ok && !acc.IsUnallocated() {
		return fmt.Errorf("%w: %s", ErrAccountInUse, id)
	}
	l.programs[id] = p
	l.accounts[id] = &Account{Lamports: 1, Executable: true}
	return nil
}

// MinimumBalance returns the lamports an account of space bytes must hold.
func (l *Ledger) MinimumBalance(space int) uint64 {
	return (l.rent.AccountOverhead + uint64(space)) * l.rent.LamportsPerByte
}

// Slot returns the number of committed transactions.
func (l *Ledger) Slot() uint64 {
	return l.slot.Load()
}

// GetAccount returns a copy of the account at addr, or ErrAccountNotFound.
func (l *Ledger) GetAccount(ctx context.Context, addr address.Address) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc, ok := l.accounts[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return acc.Clone(), nil
}

// Airdrop credits lamports to addr outside of any transaction.
func (l *Ledger) Airdrop(ctx context.Context, addr address.Address, lamports uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	release := l.locks.acquire([]accountLock{{addr: addr, writable: true}})
	defer release()

	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[addr]
	if !ok {
		acc = &Account{}
		l.accounts[addr] = acc
	}
	if acc.Lamports+lamports < acc.Lamports {
		return fmt.Errorf("airdrop of %d lamports overflows balance of %s", lamports, addr)
	}
	acc.Lamports += lamports
	l.logger.Debug("airdrop", "address", addr.String(), "lamports", lamports, "balance", acc.Lamports)
	return nil
}

// Submit verifies, executes and commits tx. Either every instruction's
// effects are committed or none are; a failed instruction is reported as
// *TxError.
func (l *Ledger) Submit(ctx context.Context, tx *Transaction) (*Receipt, error) {
	if err := tx.Verify(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := tx.lockSet()
	release := l.locks.acquire(set)
	defer release()

	state := newTxState(l, tx, set, l.clock())
	for i, ix := range tx.Instructions {
		if err := state.execute(ix); err != nil {
			l.logger.Debug("transaction failed", "signature", tx.ID(), "instruction", i, "error", err)
			return nil, &TxError{Index: i, Err: err, Logs: state.logs}
		}
	}

	slot := l.commit(state)
	l.logger.Debug("transaction committed", "signature", tx.ID(), "slot", slot)
	return &Receipt{Signature: tx.ID(), Slot: slot, Logs: state.logs}, nil
}

func (l *Ledger) commit(state *txState) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	for addr, acc := range state.changes {
		if acc.isDead() {
			delete(l.accounts, addr)
			continue
		}
		l.accounts[addr] = acc.Clone()
	}
	return l.slot.Add(1)
}

func (l *Ledger) program(id address.Address) (Processor, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.programs[id]
	return p, ok
}

func (l *Ledger) load(addr address.Address) *Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if acc, ok := l.accounts[addr]; ok {
		return acc.Clone()
	}
	return &Account{}
}
