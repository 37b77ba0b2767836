// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package scripting

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/aplane-algo/apvault/internal/client"
	"github.com/aplane-algo/apvault/internal/jsapi"
)

// GojaRunner implements Runner using the Goja JavaScript interpreter.
type GojaRunner struct {
	vm     *goja.Runtime
	api    *jsapi.API
	output func(string)
}

// NewGojaRunner creates a runner whose scripts act through c against l.
func NewGojaRunner(c *client.Client, l jsapi.Ledger, verbose bool) *GojaRunner {
	r := &GojaRunner{
		output: func(s string) {}, // Default: discard output
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	// Wrap output so SetOutput works after creation
	api := jsapi.NewAPI(c, l, verbose, func(msg string) {
		r.output(msg)
	})
	if err := api.RegisterAll(vm); err != nil {
		// Registration errors are programming bugs, not runtime errors
		panic("failed to register JS API: " + err.Error())
	}

	r.vm = vm
	r.api = api
	return r
}

// Run executes JavaScript code and returns the result. Cancelling ctx
// interrupts the script.
func (r *GojaRunner) Run(ctx context.Context, code string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	r.api.SetContext(ctx)

	r.vm.ClearInterrupt()
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			r.Interrupt()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	result, err := r.vm.RunString(code)
	if err != nil {
		if _, ok := err.(*goja.InterruptedError); ok {
			r.vm.ClearInterrupt()
			return Result{}, fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
		}
		// Use String() to keep the stack position; Export() flattens Error objects
		if jsErr, ok := err.(*goja.Exception); ok {
			return Result{}, &ScriptError{Message: jsErr.String()}
		}
		return Result{}, &ScriptError{Message: err.Error()}
	}

	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return Result{IsEmpty: true}, nil
	}
	return Result{Value: result.Export()}, nil
}

// SetOutput sets the function used for print() and log() output.
func (r *GojaRunner) SetOutput(fn func(string)) {
	if fn == nil {
		r.output = func(s string) {}
	} else {
		r.output = fn
	}
}

// Interrupt stops the currently running script.
// Safe to call from another goroutine (e.g., for timeout enforcement).
func (r *GojaRunner) Interrupt() {
	r.vm.Interrupt("script interrupted")
}

// Compile-time interface check
var _ Runner = (*GojaRunner)(nil)
