// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aplane-algo/apvault/internal/program"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ProgramID != program.DefaultProgramID.String() {
		t.Fatalf("ProgramID = %s", cfg.ProgramID)
	}
	if cfg.KeyFile != filepath.Join(dir, "signer.key") {
		t.Fatalf("KeyFile = %s", cfg.KeyFile)
	}
	if cfg.LedgerFile != filepath.Join(dir, "ledger.yaml") {
		t.Fatalf("LedgerFile = %s", cfg.LedgerFile)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	content := `program_id: 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin
ledger_file: /var/lib/apvault/ledger.yaml
rent:
  lamports_per_byte: 10
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ProgramID != "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin" {
		t.Fatalf("ProgramID = %s", cfg.ProgramID)
	}
	if cfg.LedgerFile != "/var/lib/apvault/ledger.yaml" {
		t.Fatalf("absolute LedgerFile rewritten: %s", cfg.LedgerFile)
	}
	if cfg.Rent.LamportsPerByte != 10 {
		t.Fatalf("LamportsPerByte = %d", cfg.Rent.LamportsPerByte)
	}
	// Unset nested fields keep their defaults.
	if cfg.Rent.AccountOverhead != 128 {
		t.Fatalf("AccountOverhead = %d", cfg.Rent.AccountOverhead)
	}
	if cfg.ScriptTimeoutSeconds != 30 {
		t.Fatalf("ScriptTimeoutSeconds = %d", cfg.ScriptTimeoutSeconds)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad program id", "program_id: not-base58-0OIl\n", "program_id"},
		{"system program id", "program_id: \"11111111111111111111111111111111\"\n", "system program"},
		{"zero rent", "rent:\n  lamports_per_byte: 0\n", "lamports_per_byte"},
		{"negative timeout", "script_timeout_seconds: -1\n", "script_timeout_seconds"},
		{"malformed yaml", "program_id: [\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			_, err := LoadFromPath(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestGetDataDir(t *testing.T) {
	t.Setenv("APVAULT_DATA", "/tmp/from-env")
	if got := GetDataDir("/tmp/from-flag"); got != "/tmp/from-flag" {
		t.Fatalf("flag not preferred: %s", got)
	}
	if got := GetDataDir(""); got != "/tmp/from-env" {
		t.Fatalf("env not used: %s", got)
	}
}
