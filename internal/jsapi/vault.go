// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

// JavaScript API functions for vault operations:
// - Derivation (deriveVault, isOnCurve)
// - Balances (balance, airdrop)
// - Vault lifecycle (vaultExists, initializeVault, ensureVault, fetchVault)

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/pda"
)

func (a *API) signerAddr() (address.Address, error) {
	return a.client.Signer(), nil
}

func (a *API) signerVault() (address.Address, error) {
	addr, _, err := a.client.VaultAddress()
	return addr, err
}

// jsIsOnCurve reports whether an address is a valid ed25519 point.
// isOnCurve(addr)
func (a *API) jsIsOnCurve(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "isOnCurve() requires an address argument")
	addr := a.addressArg(call, 0, "isOnCurve", a.signerAddr)
	return a.runtime.ToValue(addr.IsOnCurve())
}

// jsDeriveVault derives the vault address for an owner.
// deriveVault(owner?) - Returns { address, bump }, owner defaults to signer()
func (a *API) jsDeriveVault(call goja.FunctionCall) goja.Value {
	owner := a.addressArg(call, 0, "deriveVault", a.signerAddr)
	addr, bump, err := pda.DeriveVault(owner, a.client.ProgramID())
	if err != nil {
		a.throw("deriveVault", err)
	}
	return a.runtime.ToValue(map[string]interface{}{
		"address": addr.String(),
		"bump":    int64(bump),
	})
}

// jsBalance returns the lamport balance of an address (0 if absent).
// balance(addr?) - addr defaults to signer()
func (a *API) jsBalance(call goja.FunctionCall) goja.Value {
	addr := a.addressArg(call, 0, "balance", a.signerAddr)
	acc, err := a.ledger.GetAccount(a.ctx, addr)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return a.runtime.ToValue(uint64(0))
	}
	if err != nil {
		a.throw("balance", err)
	}
	return a.runtime.ToValue(acc.Lamports)
}

// jsAirdrop credits lamports to an address.
// airdrop(lamports, addr?) - addr defaults to signer()
func (a *API) jsAirdrop(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "airdrop() requires a lamports argument")
	amount := toUint64(a.runtime, call.Arguments[0])
	addr := a.addressArg(call, 1, "airdrop", a.signerAddr)
	if err := a.ledger.Airdrop(a.ctx, addr, amount); err != nil {
		a.throw("airdrop", err)
	}
	return a.runtime.ToValue(true)
}

// jsVaultExists reports whether an account exists at addr.
// vaultExists(addr?) - addr defaults to the signer's vault
func (a *API) jsVaultExists(call goja.FunctionCall) goja.Value {
	addr := a.addressArg(call, 0, "vaultExists", a.signerVault)
	_, err := a.ledger.GetAccount(a.ctx, addr)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return a.runtime.ToValue(false)
	}
	if err != nil {
		a.throw("vaultExists", err)
	}
	return a.runtime.ToValue(true)
}

// jsInitializeVault submits initialize_vault for the signer.
// initializeVault() - Returns { address, signature, slot, logs }
//
// Failures throw an Error with .code (e.g. "AlreadyInitialized") and .logs.
func (a *API) jsInitializeVault(call goja.FunctionCall) goja.Value {
	addr, err := a.signerVault()
	if err != nil {
		a.throw("initializeVault", err)
	}
	receipt, err := a.client.Initialize(a.ctx)
	if err != nil {
		a.throw("initializeVault", err)
	}
	result := receiptToJS(receipt)
	result["address"] = addr.String()
	a.logVerbose(fmt.Sprintf("initialized vault %s (signature %s)", addr, receipt.Signature))
	return a.runtime.ToValue(result)
}

// jsEnsureVault initializes the signer's vault or returns the existing one.
// ensureVault() - Returns { address, created, vault, receipt }
func (a *API) jsEnsureVault(call goja.FunctionCall) goja.Value {
	res, err := a.client.EnsureVault(a.ctx)
	if err != nil {
		a.throw("ensureVault", err)
	}
	result := map[string]interface{}{
		"address": res.Address.String(),
		"created": res.Created,
		"vault":   vaultToJS(res.Vault),
	}
	if res.Receipt != nil {
		result["receipt"] = receiptToJS(res.Receipt)
	}
	return a.runtime.ToValue(result)
}

// jsFetchVault reads and decodes a vault record.
// fetchVault(addr?) - Returns { owner, createdAt, value, bump }
func (a *API) jsFetchVault(call goja.FunctionCall) goja.Value {
	addr := a.addressArg(call, 0, "fetchVault", a.signerVault)
	record, err := a.client.FetchVault(a.ctx, addr)
	if err != nil {
		a.throw("fetchVault", err)
	}
	return a.runtime.ToValue(vaultToJS(record))
}

func (a *API) logVerbose(msg string) {
	if a.verbose {
		a.outputMsg("[debug] " + msg)
	}
}
