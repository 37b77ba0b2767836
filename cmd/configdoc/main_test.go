// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteReferenceListsEveryField(t *testing.T) {
	var buf bytes.Buffer
	writeReference(&buf)
	out := buf.String()

	for _, want := range []string{
		"| `program_id` | string |",
		"| `key_file` | string | `signer.key` |",
		"| `rent` | object |",
		"| `rent.lamports_per_byte` | uint | `6960` |",
		"| `script_timeout_seconds` | int | `30` |",
		"`APVAULT_DEBUG`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("reference missing %q", want)
		}
	}
}
