// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package jsapi provides JavaScript API bindings for vault scenarios.
//
// Functions are organized into files:
//   - api.go: Core API struct, registration, output, assertions
//   - vault.go: Derivation, initialization and record queries
//   - helpers.go: Type conversion utilities
package jsapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/client"
	"github.com/aplane-algo/apvault/internal/util"
)

// Ledger is the ledger surface scripts can reach.
type Ledger interface {
	client.Conn
	Airdrop(ctx context.Context, addr address.Address, lamports uint64) error
}

// API provides JavaScript bindings for a vault client.
type API struct {
	client  *client.Client
	ledger  Ledger
	ctx     context.Context
	runtime *goja.Runtime
	verbose bool
	output  func(string)
}

// NewAPI creates a new JavaScript API instance.
func NewAPI(c *client.Client, l Ledger, verbose bool, output func(string)) *API {
	return &API{
		client:  c,
		ledger:  l,
		ctx:     context.Background(),
		verbose: verbose,
		output:  output,
	}
}

// SetContext sets the context used for ledger calls made by scripts.
func (a *API) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	a.ctx = ctx
}

// Names lists the global functions RegisterAll defines, for completion.
func Names() []string {
	return []string{
		"sol", "lamports",
		"print", "log", "assert",
		"programId", "signer", "isOnCurve", "deriveVault",
		"balance", "airdrop",
		"vaultExists", "initializeVault", "ensureVault", "fetchVault",
	}
}

// RegisterAll registers all API functions on the given Goja runtime.
func (a *API) RegisterAll(vm *goja.Runtime) error {
	a.runtime = vm

	if err := vm.Set("sol", makeSolFunc(vm)); err != nil {
		return fmt.Errorf("failed to register sol: %w", err)
	}
	if err := vm.Set("lamports", makeLamportsFunc(vm)); err != nil {
		return fmt.Errorf("failed to register lamports: %w", err)
	}

	funcs := []struct {
		name string
		fn   func(goja.FunctionCall) goja.Value
	}{
		{"print", a.jsPrint},
		{"log", a.jsLog},
		{"assert", a.jsAssert},
		{"programId", a.jsProgramID},
		{"signer", a.jsSigner},
		{"isOnCurve", a.jsIsOnCurve},
		{"deriveVault", a.jsDeriveVault},
		{"balance", a.jsBalance},
		{"airdrop", a.jsAirdrop},
		{"vaultExists", a.jsVaultExists},
		{"initializeVault", a.jsInitializeVault},
		{"ensureVault", a.jsEnsureVault},
		{"fetchVault", a.jsFetchVault},
	}
	for _, f := range funcs {
		if err := vm.Set(f.name, f.fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", f.name, err)
		}
	}
	return nil
}

func (a *API) outputMsg(msg string) {
	if a.output != nil {
		a.output(msg)
	} else {
		fmt.Println(msg)
	}
}

func joinArgs(call goja.FunctionCall) string {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		parts[i] = fmt.Sprint(arg.Export())
	}
	return strings.Join(parts, " ")
}

// jsPrint outputs a message to the console.
func (a *API) jsPrint(call goja.FunctionCall) goja.Value {
	a.outputMsg(joinArgs(call))
	return goja.Undefined()
}

// jsLog outputs a debug message (only in verbose mode).
func (a *API) jsLog(call goja.FunctionCall) goja.Value {
	msg := joinArgs(call)
	util.Debug("script", "msg", msg)
	if a.verbose {
		a.outputMsg("[debug] " + msg)
	}
	return goja.Undefined()
}

// jsAssert throws when the condition is falsy.
// assert(cond, message)
func (a *API) jsAssert(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "assert() requires a condition")
	if call.Arguments[0].ToBoolean() {
		return goja.Undefined()
	}
	msg := "assertion failed"
	if len(call.Arguments) > 1 {
		msg = "assertion failed: " + call.Arguments[1].String()
	}
	panic(a.runtime.NewGoError(fmt.Errorf("%s", msg)))
}

// jsProgramID returns the vault program address.
func (a *API) jsProgramID(call goja.FunctionCall) goja.Value {
	return a.runtime.ToValue(a.client.ProgramID().String())
}

// jsSigner returns the signing authority's address.
func (a *API) jsSigner(call goja.FunctionCall) goja.Value {
	return a.runtime.ToValue(a.client.Signer().String())
}
