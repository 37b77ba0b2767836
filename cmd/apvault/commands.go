// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/client"
	"github.com/aplane-algo/apvault/internal/config"
	"github.com/aplane-algo/apvault/internal/fsutil"
	"github.com/aplane-algo/apvault/internal/keyfile"
	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/pda"
	"github.com/aplane-algo/apvault/internal/program"
	"github.com/aplane-algo/apvault/internal/scripting"
	"github.com/aplane-algo/apvault/internal/util"
)

// app holds the state shared by all commands.
type app struct {
	dataDir   string
	cfg       config.Config
	programID address.Address
	ledger    *ledger.Ledger
	out       io.Writer
	verbose   bool
}

// newApp loads config and the ledger snapshot from dataDir.
func newApp(dataDir string, out io.Writer) (*app, error) {
	if err := fsutil.MkdirAll(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}
	programID, err := cfg.Program()
	if err != nil {
		return nil, err
	}

	opts := []ledger.Option{ledger.WithRent(cfg.Rent)}
	if util.Logger != nil {
		opts = append(opts, ledger.WithLogger(util.Logger))
	}
	l, err := ledger.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := l.RegisterProgram(programID, program.New()); err != nil {
		return nil, err
	}
	if err := l.LoadSnapshot(cfg.LedgerFile); err != nil {
		return nil, err
	}
	util.Debug("ledger loaded", "path", cfg.LedgerFile, "slot", l.Slot())

	return &app{dataDir: dataDir, cfg: cfg, programID: programID, ledger: l, out: out}, nil
}

func (a *app) save() error {
	return a.ledger.SaveSnapshot(a.cfg.LedgerFile)
}

// lockPath is the advisory lock that serializes ledger writers across
// processes sharing a data directory.
func (a *app) lockPath() string {
	return a.cfg.LedgerFile + ".lock"
}

// withLedger runs fn under the ledger lock against a freshly reloaded
// snapshot and saves the ledger before releasing the lock. The ledger is
// saved even when fn fails, since fn may have committed transactions first.
func (a *app) withLedger(fn func() error) (err error) {
	lock, err := fsutil.LockFile(a.lockPath())
	if err != nil {
		return err
	}
	defer func() {
		if uerr := lock.Unlock(); err == nil && uerr != nil {
			err = fmt.Errorf("failed to release ledger lock: %w", uerr)
		}
	}()

	if err := a.ledger.LoadSnapshot(a.cfg.LedgerFile); err != nil {
		return err
	}
	runErr := fn()
	if err := a.save(); err != nil {
		return err
	}
	return runErr
}

func (a *app) signer() (ed25519.PrivateKey, error) {
	if !fsutil.Exists(a.cfg.KeyFile) {
		return nil, fmt.Errorf("no signer key at %s (run 'apvault keygen' or 'apvault import')", a.cfg.KeyFile)
	}
	return keyfile.Load(a.cfg.KeyFile)
}

func (a *app) client() (*client.Client, error) {
	sk, err := a.signer()
	if err != nil {
		return nil, err
	}
	return client.New(a.ledger, a.programID, sk)
}

// reader reads vault records without needing the signer key.
func (a *app) reader() *client.Reader {
	return client.NewReader(a.ledger, a.programID)
}

// ownerOrSigner parses arg, falling back to the signer's address.
func (a *app) ownerOrSigner(arg string) (address.Address, error) {
	if arg != "" {
		return address.Parse(arg)
	}
	sk, err := a.signer()
	if err != nil {
		return address.Address{}, err
	}
	return keyfile.Address(sk), nil
}

func (a *app) field(name string, value any) {
	fmt.Fprintf(a.out, "%s %v\n", util.Label(fmt.Sprintf("%-11s", name+":")), value)
}

func (a *app) cmdKeygen() error {
	sk, err := keyfile.Generate(a.cfg.KeyFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, util.Success("Generated signer key"))
	a.field("Address", keyfile.Address(sk))
	a.field("Key file", a.cfg.KeyFile)
	return nil
}

func (a *app) cmdImport(in io.Reader) error {
	if fsutil.Exists(a.cfg.KeyFile) {
		return fmt.Errorf("%w: %s", keyfile.ErrKeyExists, a.cfg.KeyFile)
	}
	fmt.Fprint(os.Stderr, "Enter 25-word mnemonic: ")
	words, err := readSecret(in)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read mnemonic: %w", err)
	}
	sk, err := keyfile.Decode(words)
	if err != nil {
		return err
	}
	if err := keyfile.Save(a.cfg.KeyFile, sk); err != nil {
		return err
	}
	fmt.Fprintln(a.out, util.Success("Imported signer key"))
	a.field("Address", keyfile.Address(sk))
	return nil
}

// readSecret reads one line without echo when in is a terminal.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok {
		fd := int(f.Fd()) // #nosec G115 - file descriptors are small integers
		if term.IsTerminal(fd) {
			b, err := term.ReadPassword(fd)
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) cmdAddress() error {
	sk, err := a.signer()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, keyfile.Address(sk))
	return nil
}

func (a *app) cmdBalance(ctx context.Context, arg string) error {
	addr, err := a.ownerOrSigner(arg)
	if err != nil {
		return err
	}
	var lamports uint64
	acc, err := a.ledger.GetAccount(ctx, addr)
	switch {
	case err == nil:
		lamports = acc.Lamports
	case !errors.Is(err, ledger.ErrAccountNotFound):
		return err
	}
	a.field("Address", addr)
	a.field("Lamports", lamports)
	a.field("Balance", util.FormatLamports(lamports))
	return nil
}

func (a *app) cmdAirdrop(ctx context.Context, lamports uint64, arg string) error {
	addr, err := a.ownerOrSigner(arg)
	if err != nil {
		return err
	}
	err = a.withLedger(func() error {
		return a.ledger.Airdrop(ctx, addr, lamports)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %d lamports to %s\n", util.Success("Airdropped"), lamports, addr)
	return nil
}

func (a *app) cmdDerive(arg string) error {
	owner, err := a.ownerOrSigner(arg)
	if err != nil {
		return err
	}
	vaultAddr, bump, err := pda.DeriveVault(owner, a.programID)
	if err != nil {
		return err
	}
	a.field("Owner", owner)
	a.field("Program", a.programID)
	a.field("Vault", vaultAddr)
	a.field("Bump", bump)
	return nil
}

func (a *app) cmdInit(ctx context.Context) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	vaultAddr, _, err := c.VaultAddress()
	if err != nil {
		return err
	}
	var receipt *ledger.Receipt
	err = a.withLedger(func() error {
		var err error
		receipt, err = c.Initialize(ctx)
		return err
	})
	if err != nil {
		var txErr *ledger.TxError
		if errors.As(err, &txErr) {
			a.printLogs(txErr.Logs)
		}
		return err
	}
	fmt.Fprintln(a.out, util.Success("Vault initialized"))
	a.field("Vault", vaultAddr)
	a.field("Signature", receipt.Signature)
	a.field("Slot", receipt.Slot)
	if a.verbose {
		a.printLogs(receipt.Logs)
	}
	return nil
}

func (a *app) cmdEnsure(ctx context.Context) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	var res *client.EnsureResult
	err = a.withLedger(func() error {
		var err error
		res, err = c.EnsureVault(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if res.Created {
		fmt.Fprintln(a.out, util.Success("Vault initialized"))
	} else {
		fmt.Fprintln(a.out, "Vault already exists")
	}
	a.printVault(res.Address, res.Vault.Owner, res.Vault.CreatedAt, res.Vault.Value, res.Vault.Bump)
	return nil
}

func (a *app) cmdShow(ctx context.Context, arg string) error {
	owner, err := a.ownerOrSigner(arg)
	if err != nil {
		return err
	}
	vaultAddr, record, err := a.reader().FetchOwnerVault(ctx, owner)
	if err != nil {
		return err
	}
	a.printVault(vaultAddr, record.Owner, record.CreatedAt, record.Value, record.Bump)
	return nil
}

func (a *app) printVault(addr, owner address.Address, createdAt int64, value uint64, bump uint8) {
	fmt.Fprintln(a.out, util.Title("Vault "+addr.String()))
	a.field("Owner", owner)
	a.field("Created", fmt.Sprintf("%d (%s)", createdAt, time.Unix(createdAt, 0).UTC().Format(time.RFC3339)))
	a.field("Value", value)
	a.field("Bump", bump)
}

func (a *app) printLogs(logs []string) {
	for _, line := range logs {
		fmt.Fprintf(a.out, "  %s\n", util.Label(line))
	}
}

func (a *app) cmdScript(ctx context.Context, path string) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	r := scripting.NewGojaRunner(c, a.ledger, a.verbose)
	r.SetOutput(func(s string) { fmt.Fprintln(a.out, s) })

	timeout := time.Duration(a.cfg.ScriptTimeoutSeconds) * time.Second
	var res scripting.Result
	err = a.withLedger(func() error {
		var err error
		res, err = scripting.RunFile(ctx, r, path, timeout)
		return err
	})
	if err != nil {
		return err
	}
	if !res.IsEmpty {
		fmt.Fprintf(a.out, "=> %v\n", res.Value)
	}
	return nil
}
