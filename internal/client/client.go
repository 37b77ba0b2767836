// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package client predicts vault addresses, submits initialize_vault and
// reads vault records back.
package client

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/pda"
	"github.com/aplane-algo/apvault/internal/program"
	"github.com/aplane-algo/apvault/internal/util"
	"github.com/aplane-algo/apvault/internal/vault"
)

// Conn is the ledger surface the client needs.
type Conn interface {
	Submit(ctx context.Context, tx *ledger.Transaction) (*ledger.Receipt, error)
	GetAccount(ctx context.Context, addr address.Address) (*ledger.Account, error)
}

// Client acts for one signer against one vault program. Read-only calls
// come from the embedded Reader.
type Client struct {
	*Reader
	signer ed25519.PrivateKey
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger. The default is util.Logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for signer.
func New(conn Conn, programID address.Address, signer ed25519.PrivateKey, opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, errors.New("client requires a ledger connection")
	}
	if len(signer) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid signer key size: expected %d bytes, got %d", ed25519.PrivateKeySize, len(signer))
	}
	c := &Client{
		Reader: NewReader(conn, programID),
		signer: signer,
		logger: util.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// Signer returns the signer's address.
func (c *Client) Signer() address.Address {
	return address.FromPublicKey(c.signer.Public().(ed25519.PublicKey))
}

// VaultAddress predicts the signer's vault address and bump.
func (c *Client) VaultAddress() (address.Address, uint8, error) {
	return pda.DeriveVault(c.Signer(), c.programID)
}

// BuildInitialize returns a signed initialize_vault transaction.
func (c *Client) BuildInitialize() (*ledger.Transaction, address.Address, error) {
	ix, vaultAddr, _, err := program.NewInitializeVaultInstruction(c.programID, c.Signer())
	if err != nil {
		return nil, address.Address{}, fmt.Errorf("failed to derive vault address: %w", err)
	}
	tx := ledger.NewTransaction(ix)
	if err := tx.Sign(c.signer); err != nil {
		return nil, address.Address{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, vaultAddr, nil
}

// Initialize submits initialize_vault. A vault that already exists is
// reported as program.ErrAlreadyInitialized.
func (c *Client) Initialize(ctx context.Context) (*ledger.Receipt, error) {
	tx, vaultAddr, err := c.BuildInitialize()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("submitting initialize_vault", "vault", vaultAddr.String(), "authority", c.Signer().String())

	receipt, err := c.conn.Submit(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("initialize_vault %s: %w", vaultAddr, err)
	}
	c.logger.Debug("initialize_vault committed", "signature", receipt.Signature, "slot", receipt.Slot)
	return receipt, nil
}

// Exists reports whether an account is present at the signer's vault
// address. Advisory only: the program enforces single initialization.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	vaultAddr, _, err := c.VaultAddress()
	if err != nil {
		return false, err
	}
	_, err = c.conn.GetAccount(ctx, vaultAddr)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureResult reports the outcome of EnsureVault.
type EnsureResult struct {
	Address address.Address
	Vault   *vault.Account
	// Created is false when the vault already existed.
	Created bool
	Receipt *ledger.Receipt
}

// EnsureVault initializes the signer's vault, treating an existing vault
// owned by the signer as success.
func (c *Client) EnsureVault(ctx context.Context) (*EnsureResult, error) {
	vaultAddr, _, err := c.VaultAddress()
	if err != nil {
		return nil, err
	}

	receipt, err := c.Initialize(ctx)
	created := true
	switch {
	case err == nil:
	case errors.Is(err, program.ErrAlreadyInitialized):
		created = false
		c.logger.Debug("vault already initialized", "vault", vaultAddr.String())
	default:
		return nil, err
	}

	record, err := c.FetchVault(ctx, vaultAddr)
	if err != nil {
		return nil, err
	}
	if record.Owner != c.Signer() {
		return nil, fmt.Errorf("%w: vault %s belongs to %s", ErrOwnerMismatch, vaultAddr, record.Owner)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return &EnsureResult{Address: vaultAddr, Vault: record, Created: created, Receipt: receipt}, nil
}
