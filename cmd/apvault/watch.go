// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/client"
	"github.com/aplane-algo/apvault/internal/pda"
	"github.com/aplane-algo/apvault/internal/util"
)

const watchDebounce = 200 * time.Millisecond

// startLedgerWatcher calls onChange after path is created, written or
// replaced. The directory is watched because snapshots are swapped in by
// rename.
func startLedgerWatcher(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch ledger directory: %w", err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, onChange)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				util.Debug("ledger watcher error", "error", err)
			}
		}
	}()
	return nil
}

// cmdWatch shows the owner's vault and refreshes it whenever another
// process changes the ledger. Output that is not a terminal gets one line
// per change instead of the interactive view.
func (a *app) cmdWatch(ctx context.Context, arg string) error {
	owner, err := a.ownerOrSigner(arg)
	if err != nil {
		return err
	}
	vaultAddr, _, err := pda.DeriveVault(owner, a.programID)
	if err != nil {
		return err
	}
	refresh := func() (string, error) {
		if err := a.ledger.LoadSnapshot(a.cfg.LedgerFile); err != nil {
			return "", err
		}
		return a.vaultStatus(ctx, vaultAddr), nil
	}

	if f, ok := a.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) { // #nosec G115 - file descriptors are small integers
		return a.watchView(ctx, vaultAddr, refresh)
	}
	return a.watchLines(ctx, vaultAddr, refresh)
}

// watchView runs the interactive watch screen until q or Ctrl+C.
func (a *app) watchView(ctx context.Context, vaultAddr address.Address, refresh func() (string, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newWatchModel(vaultAddr, a.vaultStatus(ctx, vaultAddr), refresh), tea.WithOutput(a.out))
	if err := startLedgerWatcher(ctx, a.cfg.LedgerFile, func() { p.Send(ledgerChangedMsg{}) }); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch view failed: %w", err)
	}
	return nil
}

// watchLines prints a status line on every change until ctx is done.
func (a *app) watchLines(ctx context.Context, vaultAddr address.Address, refresh func() (string, error)) error {
	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	if err := startLedgerWatcher(ctx, a.cfg.LedgerFile, notify); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Watching vault %s (Ctrl+C to stop)\n", vaultAddr)
	last := a.vaultStatus(ctx, vaultAddr)
	fmt.Fprintln(a.out, last)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			status, err := refresh()
			if err != nil {
				fmt.Fprintf(a.out, "%s %v\n", util.Failure("Error:"), err)
				continue
			}
			if status != last {
				last = status
				fmt.Fprintln(a.out, status)
			}
		}
	}
}

// vaultStatus summarizes the record at vaultAddr in one line.
func (a *app) vaultStatus(ctx context.Context, vaultAddr address.Address) string {
	record, err := a.reader().FetchVault(ctx, vaultAddr)
	switch {
	case errors.Is(err, client.ErrVaultNotFound):
		return statusNotInitialized
	case err != nil:
		return "error: " + err.Error()
	}
	return fmt.Sprintf("vault owner=%s createdAt=%d value=%d", record.Owner, record.CreatedAt, record.Value)
}
