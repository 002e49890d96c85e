// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// statescope is the operator CLI for a running stream daemon. It
// reconfigures the daemon over its control socket and follows the
// live record stream over TCP.
//
// Verbs:
//
//	status                     show daemon state and counters
//	enable                     resume scheduled broadcasts
//	disable                    pause scheduled broadcasts
//	set-interval <duration>    change the broadcast cadence
//	set-tier <tier>            change update verbosity (minimal, standard, full)
//	broadcast <cat> <sec> <fld> <val> [key=value ...]
//	                           push one record to every connected client
//	tail                       follow the record stream
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/statescope/statescope/control"
	"github.com/statescope/statescope/lib/config"
	"github.com/statescope/statescope/lib/process"
	"github.com/statescope/statescope/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	defaults := config.Default()
	defaults.ExpandVariables()

	var socketPath string
	flagSet := pflag.NewFlagSet("statescope", pflag.ContinueOnError)
	flagSet.StringVar(&socketPath, "socket", defaults.Control.Socket, "daemon control socket path")
	flagSet.BoolP("help", "h", false, "show help")
	// Stop at the first verb so its flags (tail --capture, for one)
	// reach the verb's own flag set unparsed. Root flags go before
	// the verb.
	flagSet.SetInterspersed(false)

	// Handle --version before flag parsing to match other StateScope
	// binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("statescope")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(flagSet)
		return errors.New("missing command")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := control.NewClient(socketPath)
	verb, rest := args[0], args[1:]
	switch verb {
	case "status":
		if len(rest) != 0 {
			return fmt.Errorf("status takes no arguments, got %q", rest[0])
		}
		return runStatus(ctx, client)
	case "enable":
		if len(rest) != 0 {
			return fmt.Errorf("enable takes no arguments, got %q", rest[0])
		}
		return runEnable(ctx, client)
	case "disable":
		if len(rest) != 0 {
			return fmt.Errorf("disable takes no arguments, got %q", rest[0])
		}
		return runDisable(ctx, client)
	case "set-interval":
		if len(rest) != 1 {
			return errors.New("usage: statescope set-interval <duration>")
		}
		return runSetInterval(ctx, client, rest[0])
	case "set-tier":
		if len(rest) != 1 {
			return errors.New("usage: statescope set-tier <minimal|standard|full>")
		}
		return runSetTier(ctx, client, rest[0])
	case "broadcast":
		if len(rest) < 4 {
			return errors.New("usage: statescope broadcast <cat> <sec> <fld> <val> [key=value ...]")
		}
		return runBroadcast(ctx, client, rest)
	case "tail":
		return runTail(ctx, defaults.Stream.Address, rest)
	default:
		return fmt.Errorf("unknown command %q (try --help)", verb)
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `statescope — operator CLI for a StateScope stream daemon.

Control verbs talk to the daemon over its control socket (--socket).
The tail verb connects to the TCP record stream directly and follows
it until interrupted.

Usage:
  statescope [flags] <command> [args]

Commands:
  status                     show daemon state and counters
  enable                     resume scheduled broadcasts
  disable                    pause scheduled broadcasts
  set-interval <duration>    change the broadcast cadence (e.g. 100ms, 1s)
  set-tier <tier>            change update verbosity: minimal, standard, full
  broadcast <cat> <sec> <fld> <val> [key=value ...]
                             push one record to every connected client
  tail [flags]               follow the record stream (see tail --help)

Examples:
  # Inspect a running daemon
  statescope status

  # Slow the stream down to one update per second
  statescope set-interval 1s

  # Inject a marker record visible to every consumer
  statescope broadcast sys event note "before reset" origin=operator

  # Follow the stream, writing a compressed capture alongside
  statescope tail --capture session.zst

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
