// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/pda"
	"github.com/aplane-algo/apvault/internal/vault"
)

// Reader reads vault records for any owner. It needs no signing key.
type Reader struct {
	conn      Conn
	programID address.Address
}

// NewReader creates a Reader for the vault program at programID.
func NewReader(conn Conn, programID address.Address) *Reader {
	return &Reader{conn: conn, programID: programID}
}

// ProgramID returns the vault program the reader targets.
func (r *Reader) ProgramID() address.Address {
	return r.programID
}

// FetchVault reads and decodes the vault record at addr.
func (r *Reader) FetchVault(ctx context.Context, addr address.Address) (*vault.Account, error) {
	acc, err := r.conn.GetAccount(ctx, addr)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, addr)
	}
	if err != nil {
		return nil, err
	}
	if len(acc.Data) == 0 {
		return nil, fmt.Errorf("%w: %s holds no data", ErrVaultNotFound, addr)
	}
	if acc.Owner != r.programID {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrWrongProgram, addr, acc.Owner)
	}
	return vault.Decode(acc.Data)
}

// FetchOwnerVault derives owner's vault address and reads the record there.
func (r *Reader) FetchOwnerVault(ctx context.Context, owner address.Address) (address.Address, *vault.Account, error) {
	vaultAddr, _, err := pda.DeriveVault(owner, r.programID)
	if err != nil {
		return address.Address{}, nil, err
	}
	record, err := r.FetchVault(ctx, vaultAddr)
	if err != nil {
		return vaultAddr, nil, err
	}
	return vaultAddr, record, nil
}
