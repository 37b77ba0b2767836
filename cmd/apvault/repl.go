// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/aplane-algo/apvault/internal/jsapi"
	"github.com/aplane-algo/apvault/internal/scripting"
)

const replPrompt = "\033[32mapvault>\033[0m "

// cmdRepl evaluates JavaScript interactively against the local ledger.
func (a *app) cmdRepl(ctx context.Context) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	r := scripting.NewGojaRunner(c, a.ledger, a.verbose)
	r.SetOutput(func(s string) { fmt.Fprintln(a.out, s) })

	items := make([]readline.PrefixCompleterInterface, 0, len(jsapi.Names())+2)
	for _, name := range jsapi.Names() {
		items = append(items, readline.PcItem(name+"("))
	}
	items = append(items, readline.PcItem("exit"), readline.PcItem("quit"))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            replPrompt,
		HistoryFile:       filepath.Join(a.dataDir, ".apvault_history"),
		HistoryLimit:      1000,
		AutoComplete:      readline.NewPrefixCompleter(items...),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer func() {
		_ = rl.Close() // Best-effort close, errors during shutdown not critical
	}()

	fmt.Fprintf(a.out, "Signer %s, program %s. Type 'exit' to quit.\n", c.Signer(), a.programID)
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					fmt.Fprintln(a.out, "Use 'quit' or 'exit' to exit")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if a.evalLine(ctx, r, line) {
			return nil
		}
	}
}

// evalLine runs one REPL line and reports whether the session should end.
func (a *app) evalLine(ctx context.Context, r scripting.Runner, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "exit", "quit":
		return true
	}

	// The lock is held per line so other processes can write between lines.
	var res scripting.Result
	err := a.withLedger(func() error {
		var err error
		res, err = r.Run(ctx, line)
		return err
	})
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return false
	}
	if !res.IsEmpty {
		fmt.Fprintf(a.out, "%v\n", res.Value)
	}
	return false
}
