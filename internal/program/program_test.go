// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package program

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/pda"
	"github.com/aplane-algo/apvault/internal/vault"
)

const testNow = int64(1700000000)

type fixture struct {
	ledger *ledger.Ledger
	now    atomic.Int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.now.Store(testNow)
	l, err := ledger.New(ledger.WithClock(func() time.Time { return time.Unix(f.now.Load(), 0) }))
	if err != nil {
		t.Fatalf("ledger.New failed: %v", err)
	}
	if err := l.RegisterProgram(DefaultProgramID, New()); err != nil {
		t.Fatalf("RegisterProgram failed: %v", err)
	}
	f.ledger = l
	return f
}

func (f *fixture) fundedSigner(t *testing.T, lamports uint64) (ed25519.PrivateKey, address.Address) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	addr := address.FromPublicKey(pub)
	if lamports > 0 {
		if err := f.ledger.Airdrop(context.Background(), addr, lamports); err != nil {
			t.Fatalf("Airdrop failed: %v", err)
		}
	}
	return priv, addr
}

func (f *fixture) submit(t *testing.T, key ed25519.PrivateKey, ix ledger.Instruction) (*ledger.Receipt, error) {
	t.Helper()
	tx := ledger.NewTransaction(ix)
	if err := tx.Sign(key); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	return f.ledger.Submit(context.Background(), tx)
}

func (f *fixture) account(t *testing.T, addr address.Address) *ledger.Account {
	t.Helper()
	acc, err := f.ledger.GetAccount(context.Background(), addr)
	if err != nil {
		t.Fatalf("GetAccount(%s) failed: %v", addr, err)
	}
	return acc
}

func (f *fixture) requireMissing(t *testing.T, addr address.Address) {
	t.Helper()
	if _, err := f.ledger.GetAccount(context.Background(), addr); !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Fatalf("GetAccount(%s): err = %v, want ErrAccountNotFound", addr, err)
	}
}

func (f *fixture) fetch(t *testing.T, addr address.Address) *vault.Account {
	t.Helper()
	acc := f.account(t, addr)
	if acc.Owner != DefaultProgramID {
		t.Fatalf("vault storage owned by %s, want the program", acc.Owner)
	}
	record, err := vault.Decode(acc.Data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return record
}

func initInstruction(t *testing.T, owner address.Address) (ledger.Instruction, address.Address, uint8) {
	t.Helper()
	ix, vaultAddr, bump, err := NewInitializeVaultInstruction(DefaultProgramID, owner)
	if err != nil {
		t.Fatalf("NewInitializeVaultInstruction failed: %v", err)
	}
	return ix, vaultAddr, bump
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err = %v, want %v", err, target)
	}
}

func TestInitializeVault(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 1_000_000_000)
	ix, vaultAddr, bump := initInstruction(t, owner)

	receipt, err := f.submit(t, key, ix)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	for _, want := range []string{
		"Program log: Instruction: InitializeVault",
		"Program log: Vault PDA initialized successfully:",
		"Program log:  Owner: " + owner.String(),
		"Program log:  Value: 0",
	} {
		if !slices.Contains(receipt.Logs, want) {
			t.Errorf("logs missing %q", want)
		}
	}

	record := f.fetch(t, vaultAddr)
	want := vault.Account{Owner: owner, CreatedAt: testNow, Value: 0, Bump: bump}
	if *record != want {
		t.Errorf("record = %+v, want %+v", *record, want)
	}

	acc := f.account(t, vaultAddr)
	if len(acc.Data) != vault.AccountSize {
		t.Errorf("data length = %d, want %d", len(acc.Data), vault.AccountSize)
	}
	if rent := f.ledger.MinimumBalance(vault.AccountSize); acc.Lamports != rent {
		t.Errorf("vault lamports = %d, want %d", acc.Lamports, rent)
	}
	if got := f.account(t, owner).Lamports; got != 1_000_000_000-acc.Lamports {
		t.Errorf("payer lamports = %d, want %d", got, 1_000_000_000-acc.Lamports)
	}
}

func TestInitializeVaultReplayIsRejected(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 1_000_000_000)
	ix, vaultAddr, _ := initInstruction(t, owner)

	if _, err := f.submit(t, key, ix); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	first := f.fetch(t, vaultAddr)

	f.now.Add(3600)
	_, err := f.submit(t, key, ix)
	expectErr(t, err, ErrAlreadyInitialized)

	if second := f.fetch(t, vaultAddr); *second != *first {
		t.Fatalf("replay changed the record: %+v -> %+v", *first, *second)
	}
}

func TestInitializeVaultAddressMismatch(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 1_000_000_000)
	_, other := f.fundedSigner(t, 0)

	otherVault, _, err := pda.DeriveVault(other, DefaultProgramID)
	if err != nil {
		t.Fatalf("DeriveVault failed: %v", err)
	}
	_, random := f.fundedSigner(t, 0)

	for name, named := range map[string]address.Address{
		"other owner's vault": otherVault,
		"arbitrary key":       random,
	} {
		t.Run(name, func(t *testing.T) {
			ix := NewInitializeVaultInstructionFor(DefaultProgramID, owner, named)
			_, err := f.submit(t, key, ix)
			expectErr(t, err, ErrAddressMismatch)
			f.requireMissing(t, named)
		})
	}

	if got := f.account(t, owner).Lamports; got != 1_000_000_000 {
		t.Fatalf("payer lamports = %d, want 1000000000", got)
	}
}

func TestInitializeVaultUnderAnotherProgramID(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 1_000_000_000)
	_, otherProgram := f.fundedSigner(t, 0)

	// Address derived for a different program id: the deployed program
	// recomputes with its own id and rejects it.
	wrongVault, _, err := pda.DeriveVault(owner, otherProgram)
	if err != nil {
		t.Fatalf("DeriveVault failed: %v", err)
	}

	_, err = f.submit(t, key, NewInitializeVaultInstructionFor(DefaultProgramID, owner, wrongVault))
	expectErr(t, err, ErrAddressMismatch)
}

func TestInitializeVaultInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 10)
	ix, vaultAddr, _ := initInstruction(t, owner)

	_, err := f.submit(t, key, ix)
	expectErr(t, err, ErrAllocationFailed)
	f.requireMissing(t, vaultAddr)
}

func TestInitializeVaultPrefundedAddress(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 1_000_000_000)
	ix, vaultAddr, _ := initInstruction(t, owner)
	if err := f.ledger.Airdrop(context.Background(), vaultAddr, 1_000); err != nil {
		t.Fatalf("Airdrop failed: %v", err)
	}

	if _, err := f.submit(t, key, ix); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if got, want := f.account(t, vaultAddr).Lamports, f.ledger.MinimumBalance(vault.AccountSize); got != want {
		t.Errorf("vault lamports = %d, want %d", got, want)
	}
	if got := f.fetch(t, vaultAddr).Owner; got != owner {
		t.Errorf("owner = %s, want %s", got, owner)
	}
}

func TestInitializeVaultRequiresAuthoritySignature(t *testing.T) {
	f := newFixture(t)
	payerKey, payer := f.fundedSigner(t, 1_000_000_000)
	_, victim := f.fundedSigner(t, 1_000_000_000)

	// The victim is named as authority but not marked as a signer; the
	// payer signs for the transaction instead.
	ix, _, _ := initInstruction(t, victim)
	ix.Accounts[vault.InitializeAccountAuthority].IsSigner = false
	ix.Accounts = append(ix.Accounts, ledger.AccountMeta{Address: payer, IsSigner: true, IsWritable: true})

	_, err := f.submit(t, payerKey, ix)
	expectErr(t, err, ledger.ErrMissingSignature)
}

func TestInitializeVaultRejectsFakeSystemProgram(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 1_000_000_000)
	_, fake := f.fundedSigner(t, 0)

	ix, _, _ := initInstruction(t, owner)
	ix.Accounts[vault.InitializeAccountSystemProgram].Address = fake

	_, err := f.submit(t, key, ix)
	expectErr(t, err, ErrInvalidSystemProgram)
}

func TestInitializeVaultMissingAccounts(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 1_000_000_000)

	ix, _, _ := initInstruction(t, owner)
	ix.Accounts = ix.Accounts[:2]

	_, err := f.submit(t, key, ix)
	expectErr(t, err, ErrNotEnoughAccounts)
}

func TestInitializeVaultRejectsNonPositiveClock(t *testing.T) {
	f := newFixture(t)
	f.now.Store(0)
	key, owner := f.fundedSigner(t, 1_000_000_000)
	ix, vaultAddr, _ := initInstruction(t, owner)

	_, err := f.submit(t, key, ix)
	expectErr(t, err, ErrInvalidClock)
	f.requireMissing(t, vaultAddr)
}

func TestUnknownInstruction(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 1_000_000_000)

	ix, _, _ := initInstruction(t, owner)
	ix.Data = []byte{0, 1, 2, 3, 4, 5, 6, 7}

	_, err := f.submit(t, key, ix)
	expectErr(t, err, vault.ErrUnknownInstruction)
}

func TestConcurrentInitializeCommitsOnce(t *testing.T) {
	f := newFixture(t)
	key, owner := f.fundedSigner(t, 1_000_000_000)
	ix, vaultAddr, _ := initInstruction(t, owner)

	var succeeded, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			tx := ledger.NewTransaction(ix)
			if err := tx.Sign(key); err != nil {
				return err
			}
			_, err := f.ledger.Submit(context.Background(), tx)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrAlreadyInitialized):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if succeeded.Load() != 1 || rejected.Load() != 15 {
		t.Fatalf("succeeded=%d rejected=%d, want 1 and 15", succeeded.Load(), rejected.Load())
	}

	want := uint64(1_000_000_000) - f.ledger.MinimumBalance(vault.AccountSize)
	if got := f.account(t, owner).Lamports; got != want {
		t.Errorf("payer lamports = %d, want %d", got, want)
	}
	if got := f.fetch(t, vaultAddr).Owner; got != owner {
		t.Errorf("owner = %s, want %s", got, owner)
	}
}

func TestInitializedVaultsSatisfyInvariants(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		f.now.Add(1)
		key, owner := f.fundedSigner(t, 1_000_000_000)
		ix, vaultAddr, bump := initInstruction(t, owner)
		if _, err := f.submit(t, key, ix); err != nil {
			t.Fatalf("initialize %d failed: %v", i, err)
		}

		record := f.fetch(t, vaultAddr)
		if err := record.Validate(); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if record.Owner != owner || record.Value != 0 || record.CreatedAt <= 0 || record.Bump != bump {
			t.Fatalf("record = %+v, want owner %s, value 0, positive createdAt, bump %d", *record, owner, bump)
		}
		if err := pda.VerifyProgramAddress(pda.VaultSeeds(owner), record.Bump, DefaultProgramID, vaultAddr); err != nil {
			t.Fatalf("VerifyProgramAddress failed: %v", err)
		}
	}
}
