// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanFlagsMathRand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "internal/pda/bad.go"), "package pda\n\nimport (\n\t\"fmt\"\n\tmrand \"math/rand\"\n)\n\nvar _ = fmt.Sprint\nvar _ = mrand.Int\n")
	writeFile(t, filepath.Join(root, "internal/pda/good.go"), "package pda\n\nimport \"crypto/rand\"\n\nvar _ = rand.Reader\n")
	writeFile(t, filepath.Join(root, "internal/pda/bad_test.go"), "package pda\n\nimport \"math/rand\"\n\nvar _ = rand.Int\n")
	writeFile(t, filepath.Join(root, "internal/other/free.go"), "package other\n\nimport \"math/rand/v2\"\n\nvar _ = rand.Int\n")

	findings, checked, err := scan(root, []string{"internal/pda", "internal/missing"})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if checked != 2 {
		t.Errorf("checked = %d, want 2", checked)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %+v, want 1", findings)
	}
	if findings[0].line != 5 {
		t.Errorf("line = %d, want 5", findings[0].line)
	}
}

func TestRepositoryIsClean(t *testing.T) {
	findings, _, err := scan(filepath.Join("..", ".."), criticalDirs)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, f := range findings {
		t.Errorf("%s:%d %s", f.file, f.line, f.reason)
	}
}
