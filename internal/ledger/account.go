// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package ledger

import (
	"github.com/aplane-algo/apvault/internal/address"
)

// SystemProgramID owns every account that no other program has claimed.
var SystemProgramID = address.Zero

// Account is the stored state at one address.
type Account struct {
	Lamports   uint64
	Owner      address.Address
	Data       []byte
	Executable bool
}

// Clone returns a deep copy of a.
func (a *Account) Clone() *Account {
	c := *a
	if a.Data != nil {
		c.Data = append([]byte(nil), a.Data...)
	}
	return &c
}

// IsUnallocated reports whether a holds no data and is still owned by the
// system program. Lamports alone do not allocate an account.
func (a *Account) IsUnallocated() bool {
	return len(a.Data) == 0 && a.Owner == SystemProgramID && !a.Executable
}

// isDead reports whether a can be dropped from state entirely.
func (a *Account) isDead() bool {
	return a.Lamports == 0 && a.IsUnallocated()
}
