// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package scripting

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aplane-algo/apvault/internal/client"
	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/pda"
	"github.com/aplane-algo/apvault/internal/program"
)

const scenarioPath = "../../examples/scripts/init_vault.js"

func newRunner(t *testing.T) (*GojaRunner, *client.Client, *[]string) {
	t.Helper()
	l, err := ledger.New(ledger.WithClock(func() time.Time { return time.Unix(1700000000, 0) }))
	if err != nil {
		t.Fatalf("ledger.New failed: %v", err)
	}
	if err := l.RegisterProgram(program.DefaultProgramID, program.New()); err != nil {
		t.Fatalf("RegisterProgram failed: %v", err)
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	c, err := client.New(l, program.DefaultProgramID, priv)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}

	var out []string
	r := NewGojaRunner(c, l, false)
	r.SetOutput(func(s string) { out = append(out, s) })
	return r, c, &out
}

func TestScenarioInitializesThenSkips(t *testing.T) {
	ctx := context.Background()
	r, c, out := newRunner(t)

	want, _, err := pda.DeriveVault(c.Signer(), program.DefaultProgramID)
	if err != nil {
		t.Fatalf("DeriveVault failed: %v", err)
	}

	for i, message := range []string{"Vault initialized and verified", "already exists"} {
		*out = nil
		res, err := RunFile(ctx, r, scenarioPath, time.Minute)
		if err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
		if res.Value != want.String() {
			t.Errorf("run %d returned %v, want %s", i+1, res.Value, want)
		}
		if joined := strings.Join(*out, "\n"); !strings.Contains(joined, message) {
			t.Errorf("run %d output %q missing %q", i+1, joined, message)
		}
	}
}

func TestRunReturnsEmptyForUndefined(t *testing.T) {
	r, _, _ := newRunner(t)
	res, err := r.Run(context.Background(), "var x = 1;")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.IsEmpty {
		t.Fatalf("result = %+v, want empty", res)
	}
}

func TestRunWrapsExceptions(t *testing.T) {
	r, _, _ := newRunner(t)
	_, err := r.Run(context.Background(), `throw new Error("boom")`)
	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("err = %v, want *ScriptError", err)
	}
	if !strings.Contains(scriptErr.Message, "boom") {
		t.Errorf("message = %q, want it to mention boom", scriptErr.Message)
	}

	_, err = r.Run(context.Background(), "this is not javascript")
	if !errors.As(err, &scriptErr) {
		t.Fatalf("syntax error: err = %v, want *ScriptError", err)
	}
}

func TestRunInterruptedByTimeout(t *testing.T) {
	r, _, _ := newRunner(t)
	path := filepath.Join(t.TempDir(), "spin.js")
	if err := os.WriteFile(path, []byte("for (;;) {}"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := RunFile(context.Background(), r, path, 50*time.Millisecond); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}

	// The runtime stays usable after an interrupt.
	res, err := r.Run(context.Background(), "1 + 1")
	if err != nil {
		t.Fatalf("Run after interrupt failed: %v", err)
	}
	if res.Value != int64(2) {
		t.Fatalf("1 + 1 = %v, want 2", res.Value)
	}
}

func TestRunCancelledContext(t *testing.T) {
	r, _, _ := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, "1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunFileMissing(t *testing.T) {
	r, _, _ := newRunner(t)
	if _, err := RunFile(context.Background(), r, filepath.Join(t.TempDir(), "missing.js"), 0); err == nil {
		t.Fatal("RunFile accepted a missing file")
	}
}
