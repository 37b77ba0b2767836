// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package scripting runs vault scenarios written in JavaScript.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// ScriptError represents an error that occurred during script execution.
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string {
	return e.Message
}

// ErrInterrupted is returned when a script is stopped by its context.
var ErrInterrupted = errors.New("script interrupted")

// Result holds the outcome of running a script.
type Result struct {
	// Value is the exported result value (nil if IsEmpty is true)
	Value interface{}
	// IsEmpty is true if the script returned undefined/null/void
	IsEmpty bool
}

// Runner is the low-level VM abstraction for executing scripts.
type Runner interface {
	// Run executes the given code and returns the result.
	// Errors include syntax errors, runtime exceptions, etc.
	Run(ctx context.Context, code string) (Result, error)

	// SetOutput sets the function used for print() output.
	SetOutput(fn func(string))

	// Interrupt stops the currently running script.
	// Safe to call from another goroutine.
	Interrupt()
}

// RunFile loads path and runs it. A positive timeout bounds execution.
func RunFile(ctx context.Context, r Runner, path string, timeout time.Duration) (Result, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read script: %w", err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.Run(ctx, string(code))
}
