// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aplane-algo/apvault/internal/address"
)

const statusNotInitialized = "vault not initialized"

// ledgerChangedMsg is sent by the file watcher after the snapshot changes.
type ledgerChangedMsg struct{}

var (
	watchTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	watchLiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	watchIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	watchErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	watchHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

// watchModel is the bubbletea model behind 'apvault watch'.
type watchModel struct {
	vault   address.Address
	refresh func() (string, error)

	status  string
	err     error
	changes int
	width   int
}

func newWatchModel(vaultAddr address.Address, status string, refresh func() (string, error)) watchModel {
	return watchModel{vault: vaultAddr, status: status, refresh: refresh}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case ledgerChangedMsg:
		status, err := m.refresh()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		if status != m.status {
			m.status = status
			m.changes++
		}
		return m, nil
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(watchTitleStyle.Render("Watching vault " + m.vault.String()))
	b.WriteString("\n")

	style := watchLiveStyle
	if m.status == statusNotInitialized {
		style = watchIdleStyle
	}
	if m.width > 0 {
		style = style.Width(m.width)
	}
	b.WriteString(style.Render(m.status))
	b.WriteString("\n")
	fmt.Fprintf(&b, "changes seen: %d\n", m.changes)

	if m.err != nil {
		b.WriteString(watchErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(watchHelpStyle.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}
