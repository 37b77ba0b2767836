// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aplane-algo/apvault/internal/config"
	"github.com/aplane-algo/apvault/internal/util"
	"github.com/aplane-algo/apvault/internal/version"
)

func main() {
	// Handle early-exit flags before any other processing
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" {
			fmt.Printf("apvault %s\n", version.String())
			os.Exit(0)
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "apvault - Per-owner vault accounts at program-derived addresses\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] keygen\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] import\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] address\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] balance [ADDRESS]\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] airdrop <lamports> [ADDRESS]\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] derive [OWNER]\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] init\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] ensure\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] show [OWNER]\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] script <file.js>\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] repl\n")
		fmt.Fprintf(os.Stderr, "  apvault [-d path] watch [OWNER]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "  -d path              Data directory (or set APVAULT_DATA env var, default %s)\n", config.DefaultDataDir)
		fmt.Fprintf(os.Stderr, "  -v                   Verbose script output\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  apvault keygen\n")
		fmt.Fprintf(os.Stderr, "  apvault airdrop 1000000000\n")
		fmt.Fprintf(os.Stderr, "  apvault init\n")
		fmt.Fprintf(os.Stderr, "  apvault show\n")
		fmt.Fprintf(os.Stderr, "  apvault derive ABC123...\n")
		fmt.Fprintf(os.Stderr, "  apvault script examples/scripts/init_vault.js\n")
	}

	dataDir := flag.String("d", "", "Data directory (or set APVAULT_DATA)")
	verbose := flag.Bool("v", false, "Verbose script output")
	flag.Parse()

	util.InitLogger()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	resolvedDataDir := config.GetDataDir(*dataDir)
	if resolvedDataDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot determine data directory; use -d or APVAULT_DATA")
		os.Exit(1)
	}

	a, err := newApp(resolvedDataDir, os.Stdout)
	if err != nil {
		fail(err)
	}
	a.verbose = *verbose

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := args[0]
	switch command {
	case "keygen":
		err = a.cmdKeygen()

	case "import":
		err = a.cmdImport(os.Stdin)

	case "address":
		err = a.cmdAddress()

	case "balance":
		err = a.cmdBalance(ctx, optionalArg(args, 1))

	case "airdrop":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: apvault airdrop <lamports> [ADDRESS]\n")
			os.Exit(1)
		}
		lamports, perr := strconv.ParseUint(args[1], 10, 64)
		if perr != nil {
			fail(fmt.Errorf("invalid lamports %q: %w", args[1], perr))
		}
		err = a.cmdAirdrop(ctx, lamports, optionalArg(args, 2))

	case "derive":
		err = a.cmdDerive(optionalArg(args, 1))

	case "init":
		err = a.cmdInit(ctx)

	case "ensure":
		err = a.cmdEnsure(ctx)

	case "show":
		err = a.cmdShow(ctx, optionalArg(args, 1))

	case "script":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: apvault script <file.js>\n")
			os.Exit(1)
		}
		err = a.cmdScript(ctx, args[1])

	case "repl":
		err = a.cmdRepl(ctx)

	case "watch":
		err = a.cmdWatch(ctx, optionalArg(args, 1))

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fail(err)
	}
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", util.Failure("Error:"), err)
	os.Exit(1)
}
