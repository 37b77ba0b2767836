// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Styles for CLI output
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// SupportsColor checks if stdout is a terminal that understands ANSI codes
func SupportsColor() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) { // #nosec G115 - file descriptors are small integers
		return false
	}
	termEnv := os.Getenv("TERM")
	return termEnv != "" && termEnv != "dumb"
}

func render(style lipgloss.Style, s string) string {
	if !SupportsColor() {
		return s
	}
	return style.Render(s)
}

// Title styles a heading.
func Title(s string) string { return render(titleStyle, s) }

// Label styles a field name.
func Label(s string) string { return render(labelStyle, s) }

// Success styles a positive outcome.
func Success(s string) string { return render(successStyle, s) }

// Failure styles an error.
func Failure(s string) string { return render(errorStyle, s) }
