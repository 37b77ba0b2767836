// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package ledger

import (
	"sync"

	"github.com/aplane-algo/apvault/internal/address"
)

type accountLock struct {
	addr     address.Address
	writable bool
}

// lockTable serializes transactions per account: writers exclude everyone,
// readers share. Locks are always taken in address order. Entries are
// reference counted and dropped once no transaction holds or waits on them.
type lockTable struct {
	mu    sync.Mutex
	locks map[address.Address]*lockEntry
}

type lockEntry struct {
	sync.RWMutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[address.Address]*lockEntry)}
}

// ref returns the entry for a, counting the caller as a user.
func (t *lockTable) ref(a address.Address) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.locks[a]
	if !ok {
		e = &lockEntry{}
		t.locks[a] = e
	}
	e.refs++
	return e
}

func (t *lockTable) unref(a address.Address, e *lockEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(t.locks, a)
	}
}

// size reports how many accounts currently have a lock entry.
func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}

// acquire locks set (which must be sorted) and returns the release func.
func (t *lockTable) acquire(set []accountLock) func() {
	held := make([]func(), 0, len(set))
	for _, al := range set {
		al := al
		e := t.ref(al.addr)
		if al.writable {
			e.Lock()
			held = append(held, func() { e.Unlock(); t.unref(al.addr, e) })
		} else {
			e.RLock()
			held = append(held, func() { e.RUnlock(); t.unref(al.addr, e) })
		}
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
}
