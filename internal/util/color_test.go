// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import "testing"

// Test binaries write to a pipe, so styling must be a no-op.
func TestStylesPassThroughWithoutTerminal(t *testing.T) {
	if SupportsColor() {
		t.Skip("stdout is a terminal")
	}
	for _, fn := range []func(string) string{Title, Label, Success, Failure} {
		if got := fn("vault"); got != "vault" {
			t.Errorf("got %q, want plain text", got)
		}
	}
}
