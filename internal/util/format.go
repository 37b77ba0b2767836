// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"fmt"
	"strings"
)

// LamportDecimals is the number of decimal places in one whole unit.
const LamportDecimals = 9

// FormatAmountWithDecimals formats an integer amount with the specified
// number of decimal places. If decimals is 0, returns the raw integer value.
func FormatAmountWithDecimals(amountUnits uint64, decimals uint64) string {
	if decimals == 0 {
		return fmt.Sprintf("%d", amountUnits)
	}
	s := fmt.Sprintf("%0*d", int(decimals)+1, amountUnits)
	cut := len(s) - int(decimals)
	return s[:cut] + "." + s[cut:]
}

// FormatLamports renders lamports as whole units with trailing zeros trimmed.
// FormatLamports(1_500_000_000) -> "1.5"
func FormatLamports(lamports uint64) string {
	s := FormatAmountWithDecimals(lamports, LamportDecimals)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
