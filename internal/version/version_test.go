// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, Version+" ") {
		t.Errorf("String() = %q, want version prefix %q", s, Version)
	}
	if !strings.Contains(s, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("String() = %q, missing platform", s)
	}
	if Short() != Version+" ("+GitCommit+")" {
		t.Errorf("Short() = %q", Short())
	}
}
