// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package main implements a static check that keeps math/rand out of the
// packages that generate keys, sign transactions or derive addresses.
//
// Usage: go run ./analysis/insecurerand <repo-root>
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Directories that should never use math/rand
var criticalDirs = []string{
	"internal/address",
	"internal/keyfile",
	"internal/ledger",
	"internal/pda",
	"internal/program",
}

var forbiddenImports = map[string]bool{
	"math/rand":    true,
	"math/rand/v2": true,
}

type finding struct {
	file   string
	line   int
	reason string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: insecurerand <repo-root>")
		os.Exit(1)
	}

	findings, filesChecked, err := scan(os.Args[1], criticalDirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Insecure Random Analysis\n")
	fmt.Printf("========================\n")
	fmt.Printf("Files checked: %d\n", filesChecked)
	fmt.Printf("Critical directories: %v\n\n", criticalDirs)

	if len(findings) == 0 {
		fmt.Println("No issues found.")
		return
	}

	fmt.Printf("Issues: %d\n\n", len(findings))
	for _, f := range findings {
		fmt.Printf("%s:%d\n  %s\n\n", f.file, f.line, f.reason)
	}
	os.Exit(1)
}

// scan parses the imports of every non-test Go file under root/dirs.
func scan(root string, dirs []string) ([]finding, int, error) {
	var findings []finding
	checked := 0
	fset := token.NewFileSet()

	for _, dir := range dirs {
		dirPath := filepath.Join(root, dir)
		if _, err := os.Stat(dirPath); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}

			checked++
			f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			for _, imp := range f.Imports {
				p, err := strconv.Unquote(imp.Path.Value)
				if err != nil || !forbiddenImports[p] {
					continue
				}
				findings = append(findings, finding{
					file:   path,
					line:   fset.Position(imp.Pos()).Line,
					reason: p + " imported in security-critical package - use crypto/rand instead",
				})
			}
			return nil
		})
		if err != nil {
			return nil, checked, err
		}
	}
	return findings, checked, nil
}
