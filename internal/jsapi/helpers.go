// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"errors"
	"fmt"
	"math"

	"github.com/dop251/goja"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/program"
	"github.com/aplane-algo/apvault/internal/vault"
)

// LamportsPerSol is the lamport count of one whole unit.
const LamportsPerSol = 1_000_000_000

// makeSolFunc creates the sol() helper function bound to a runtime.
// sol(1.5) -> 1500000000
func makeSolFunc(vm *goja.Runtime) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.ToValue("sol() requires a number argument"))
		}

		val := call.Arguments[0].ToFloat()
		if val < 0 {
			panic(vm.ToValue("sol() cannot be negative"))
		}
		return vm.ToValue(uint64(math.Round(val * LamportsPerSol)))
	}
}

// makeLamportsFunc creates the lamports() helper function bound to a runtime.
// lamports(1500) -> 1500
func makeLamportsFunc(vm *goja.Runtime) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.ToValue("lamports() requires a number argument"))
		}
		return vm.ToValue(toUint64(vm, call.Arguments[0]))
	}
}

// requireArgs panics with a JS exception if the call has fewer than n arguments.
func (a *API) requireArgs(call goja.FunctionCall, n int, msg string) {
	if len(call.Arguments) < n {
		panic(a.runtime.ToValue(msg))
	}
}

// toUint64 converts a Goja value to uint64.
// Panics with a JS exception if the value is negative.
func toUint64(vm *goja.Runtime, v goja.Value) uint64 {
	switch val := v.Export().(type) {
	case int64:
		if val < 0 {
			panic(vm.ToValue("value cannot be negative"))
		}
		return uint64(val)
	case float64:
		if val < 0 {
			panic(vm.ToValue("value cannot be negative"))
		}
		return uint64(val)
	case uint64:
		return val
	default:
		i := v.ToInteger()
		if i < 0 {
			panic(vm.ToValue("value cannot be negative"))
		}
		return uint64(i)
	}
}

// addressArg parses argument i as an address, returning def when absent.
func (a *API) addressArg(call goja.FunctionCall, i int, fn string, def func() (address.Address, error)) address.Address {
	if len(call.Arguments) > i && !goja.IsUndefined(call.Arguments[i]) && !goja.IsNull(call.Arguments[i]) {
		addr, err := address.Parse(call.Arguments[i].String())
		if err != nil {
			panic(a.runtime.ToValue(fmt.Sprintf("%s() error: %v", fn, err)))
		}
		return addr
	}
	addr, err := def()
	if err != nil {
		a.throw(fn, err)
	}
	return addr
}

// errorCode names the vault error kinds a script may want to branch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, program.ErrAlreadyInitialized):
		return "AlreadyInitialized"
	case errors.Is(err, program.ErrAddressMismatch):
		return "AddressMismatch"
	case errors.Is(err, program.ErrAllocationFailed):
		return "AllocationFailed"
	case errors.Is(err, vault.ErrSchemaMismatch):
		return "SchemaMismatch"
	case errors.Is(err, ledger.ErrMissingSignature):
		return "MissingSignature"
	default:
		return ""
	}
}

// throw raises err as a JS Error carrying code and, for failed
// transactions, the program logs.
func (a *API) throw(fn string, err error) {
	obj := a.runtime.NewGoError(fmt.Errorf("%s() error: %w", fn, err))
	_ = obj.Set("code", errorCode(err))
	var txErr *ledger.TxError
	if errors.As(err, &txErr) {
		_ = obj.Set("logs", txErr.Logs)
	}
	panic(obj)
}

func vaultToJS(v *vault.Account) map[string]interface{} {
	return map[string]interface{}{
		"owner":     v.Owner.String(),
		"createdAt": v.CreatedAt,
		"value":     v.Value,
		"bump":      int64(v.Bump),
	}
}

func receiptToJS(r *ledger.Receipt) map[string]interface{} {
	if r == nil {
		return nil
	}
	return map[string]interface{}{
		"signature": r.Signature,
		"slot":      r.Slot,
		"logs":      r.Logs,
	}
}
