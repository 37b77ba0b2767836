// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// configdoc generates markdown documentation from Go struct tags.
// Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md
package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/aplane-algo/apvault/internal/config"
)

// EnvVar represents an environment variable configuration
type EnvVar struct {
	Name        string
	Description string
}

func main() {
	writeReference(os.Stdout)
}

func writeReference(w io.Writer) {
	fmt.Fprintln(w, "# Configuration Reference")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Auto-generated from Go struct tags. Do not edit manually.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "---")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## apvault Configuration")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: `config.yaml` in the apvault data directory (`-d`, `APVAULT_DATA` or `%s`)\n", config.DefaultDataDir)
	fmt.Fprintln(w)
	printStructTable(w, reflect.TypeOf(config.Config{}))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Environment Variables")
	fmt.Fprintln(w)
	printEnvVars(w)
}

func printStructTable(w io.Writer, t reflect.Type) {
	fmt.Fprintln(w, "| Field | Type | Default | Description |")
	fmt.Fprintln(w, "|-------|------|---------|-------------|")
	printStructRows(w, t, "")
}

func printStructRows(w io.Writer, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		// Handle tag options like "omitempty"
		fieldName := strings.Split(tag, ",")[0]
		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		desc := field.Tag.Get("description")

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			if desc == "" {
				desc = "(nested config block)"
			}
			fmt.Fprintf(w, "| `%s` | object | (none) | %s |\n", fieldName, desc)
			printStructRows(w, ft, fieldName)
			continue
		}

		if desc == "" {
			desc = "(no description)"
		}

		def := field.Tag.Get("default")
		switch def {
		case "":
			def = "(none)"
		case `""`:
			def = "(empty string)"
		}

		fmt.Fprintf(w, "| `%s` | %s | `%s` | %s |\n", fieldName, formatType(field.Type), def, desc)
	}
}

func formatType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "uint"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "[]" + formatType(t.Elem())
	case reflect.Ptr:
		return "*" + formatType(t.Elem())
	default:
		return t.String()
	}
}

func printEnvVars(w io.Writer) {
	envVars := []EnvVar{
		{"APVAULT_DATA", "Data directory (config, signer key, ledger snapshot)"},
		{"APVAULT_DEBUG", "Set to any value to enable debug logging"},
	}

	fmt.Fprintln(w, "| Variable | Description |")
	fmt.Fprintln(w, "|----------|-------------|")
	for _, env := range envVars {
		fmt.Fprintf(w, "| `%s` | %s |\n", env.Name, env.Description)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "### Data Directory Resolution")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. `-d <path>` flag")
	fmt.Fprintln(w, "2. `APVAULT_DATA` environment variable")
	fmt.Fprintf(w, "3. `%s`\n", config.DefaultDataDir)
}

func init() {
	if len(os.Args) > 1 && os.Args[1] == "--help" {
		fmt.Println("Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md")
		fmt.Println()
		fmt.Println("Generates markdown documentation from Go struct tags.")
		os.Exit(0)
	}
}
