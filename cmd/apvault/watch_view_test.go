// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aplane-algo/apvault/internal/address"
)

func TestWatchModelRefreshesOnLedgerChange(t *testing.T) {
	statuses := []string{statusNotInitialized, "vault owner=X createdAt=1 value=0"}
	calls := 0
	refresh := func() (string, error) {
		s := statuses[calls]
		if calls < len(statuses)-1 {
			calls++
		}
		return s, nil
	}
	vaultAddr := address.Address{1}
	m := newWatchModel(vaultAddr, statusNotInitialized, refresh)

	// Unchanged status does not count as a change.
	next, cmd := m.Update(ledgerChangedMsg{})
	if cmd != nil {
		t.Fatal("ledger change returned a command")
	}
	m = next.(watchModel)
	if m.changes != 0 {
		t.Fatalf("changes = %d, want 0", m.changes)
	}

	next, _ = m.Update(ledgerChangedMsg{})
	m = next.(watchModel)
	if m.changes != 1 || m.status != statuses[1] {
		t.Fatalf("model = %+v, want one change to %q", m, statuses[1])
	}

	view := m.View()
	for _, want := range []string{vaultAddr.String(), statuses[1], "changes seen: 1", "q: quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view %q missing %q", view, want)
		}
	}
}

func TestWatchModelShowsRefreshError(t *testing.T) {
	m := newWatchModel(address.Address{2}, statusNotInitialized, func() (string, error) {
		return "", errors.New("snapshot unreadable")
	})
	next, _ := m.Update(ledgerChangedMsg{})
	m = next.(watchModel)

	if m.status != statusNotInitialized {
		t.Fatalf("status = %q, want the previous status kept", m.status)
	}
	if !strings.Contains(m.View(), "Error: snapshot unreadable") {
		t.Fatalf("view %q missing the refresh error", m.View())
	}
}

func TestWatchModelQuitKeys(t *testing.T) {
	m := newWatchModel(address.Address{3}, statusNotInitialized, nil)
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: no command returned", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: command did not quit", key)
		}
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd != nil {
		t.Fatal("unrelated key returned a command")
	}
}

func TestWatchModelTracksWidth(t *testing.T) {
	m := newWatchModel(address.Address{4}, statusNotInitialized, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if got := next.(watchModel).width; got != 120 {
		t.Fatalf("width = %d, want 120", got)
	}
}
