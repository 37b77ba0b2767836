// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import "testing"

func TestFormatAmountWithDecimals(t *testing.T) {
	tests := []struct {
		name     string
		amount   uint64
		decimals uint64
		want     string
	}{
		{"zero decimals", 12345, 0, "12345"},
		{"two decimals", 12345, 2, "123.45"},
		{"leading zero", 5, 2, "0.05"},
		{"zero amount", 0, 3, "0.000"},
		{"nine decimals", 1_287_600, 9, "0.001287600"},
		{"max uint64", 18446744073709551615, 9, "18446744073.709551615"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmountWithDecimals(tt.amount, tt.decimals); got != tt.want {
				t.Errorf("FormatAmountWithDecimals(%d, %d) = %q, want %q", tt.amount, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatLamports(t *testing.T) {
	tests := []struct {
		lamports uint64
		want     string
	}{
		{0, "0"},
		{1, "0.000000001"},
		{1_000_000_000, "1"},
		{1_500_000_000, "1.5"},
		{1_287_600, "0.0012876"},
	}
	for _, tt := range tests {
		if got := FormatLamports(tt.lamports); got != tt.want {
			t.Errorf("FormatLamports(%d) = %q, want %q", tt.lamports, got, tt.want)
		}
	}
}
