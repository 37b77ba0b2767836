// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package ledger

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/fsutil"
)

type snapshotFile struct {
	Slot     uint64            `yaml:"slot"`
	Accounts []snapshotAccount `yaml:"accounts"`
}

type snapshotAccount struct {
	Address  address.Address `yaml:"address"`
	Lamports uint64          `yaml:"lamports"`
	Owner    address.Address `yaml:"owner"`
	Data     string          `yaml:"data,omitempty"`
}

// SaveSnapshot writes every non-executable account to path as YAML.
// Program accounts are not persisted; they are registered at startup.
func (l *Ledger) SaveSnapshot(path string) error {
	l.mu.RLock()
	snap := snapshotFile{Slot: l.slot.Load()}
	for addr, acc := range l.accounts {
		if acc.Executable {
			continue
		}
		entry := snapshotAccount{Address: addr, Lamports: acc.Lamports, Owner: acc.Owner}
		if len(acc.Data) > 0 {
			entry.Data = base64.StdEncoding.EncodeToString(acc.Data)
		}
		snap.Accounts = append(snap.Accounts, entry)
	}
	l.mu.RUnlock()

	sort.Slice(snap.Accounts, func(i, j int) bool {
		return snap.Accounts[i].Address.Compare(snap.Accounts[j].Address) < 0
	})

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// LoadSnapshot replaces non-executable state with the contents of path.
// A missing file leaves the ledger empty.
func (l *Ledger) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snap snapshotFile
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	accounts := make(map[address.Address]*Account, len(snap.Accounts))
	for _, entry := range snap.Accounts {
		acc := &Account{Lamports: entry.Lamports, Owner: entry.Owner}
		if entry.Data != "" {
			acc.Data, err = base64.StdEncoding.DecodeString(entry.Data)
			if err != nil {
				return fmt.Errorf("snapshot account %s: invalid data: %w", entry.Address, err)
			}
		}
		accounts[entry.Address] = acc
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for addr, acc := range l.accounts {
		if acc.Executable {
			if _, clash := accounts[addr]; clash {
				return fmt.Errorf("snapshot account %s collides with a registered program", addr)
			}
			accounts[addr] = acc
		}
	}
	l.accounts = accounts
	l.slot.Store(snap.Slot)
	return nil
}
