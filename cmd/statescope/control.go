// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/statescope/statescope/control"
	"github.com/statescope/statescope/wire"
)

func runStatus(ctx context.Context, client *control.Client) error {
	status, err := client.Status(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "running:\t%v\n", status.Running)
	fmt.Fprintf(w, "version:\t%s\n", status.Version)
	fmt.Fprintf(w, "pid:\t%d\n", status.PID)
	fmt.Fprintf(w, "uptime:\t%s\n", time.Duration(status.UptimeSeconds*float64(time.Second)).Round(time.Second))
	fmt.Fprintf(w, "address:\t%s\n", status.Address)
	fmt.Fprintf(w, "clients:\t%d\n", status.Clients)
	fmt.Fprintf(w, "interval:\t%s\n", time.Duration(status.IntervalMS)*time.Millisecond)
	fmt.Fprintf(w, "tier:\t%s\n", status.Tier)
	fmt.Fprintf(w, "enabled:\t%v\n", status.Enabled)
	fmt.Fprintf(w, "ticks:\t%d\n", status.Ticks)
	fmt.Fprintf(w, "broadcasts:\t%d\n", status.Broadcasts)
	fmt.Fprintf(w, "records:\t%d\n", status.Records)
	fmt.Fprintf(w, "dropped clients:\t%d\n", status.Dropped)
	return w.Flush()
}

func runEnable(ctx context.Context, client *control.Client) error {
	if err := client.Enable(ctx); err != nil {
		return err
	}
	fmt.Println("scheduled broadcasts enabled")
	return nil
}

func runDisable(ctx context.Context, client *control.Client) error {
	if err := client.Disable(ctx); err != nil {
		return err
	}
	fmt.Println("scheduled broadcasts disabled")
	return nil
}

func runSetInterval(ctx context.Context, client *control.Client, arg string) error {
	interval, err := parseInterval(arg)
	if err != nil {
		return err
	}
	if err := client.SetInterval(ctx, interval); err != nil {
		return err
	}
	fmt.Printf("interval set to %s\n", interval)
	return nil
}

// parseInterval accepts Go duration strings and bare integers, which
// are read as milliseconds.
func parseInterval(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	interval, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: expected a duration (100ms, 1s) or integer milliseconds", s)
	}
	return interval, nil
}

func runSetTier(ctx context.Context, client *control.Client, arg string) error {
	tier, err := wire.ParseTier(arg)
	if err != nil {
		return err
	}
	if err := client.SetTier(ctx, tier); err != nil {
		return err
	}
	fmt.Printf("tier set to %s\n", tier)
	return nil
}

func runBroadcast(ctx context.Context, client *control.Client, args []string) error {
	aux, err := parseAux(args[4:])
	if err != nil {
		return err
	}
	delivered, err := client.Broadcast(ctx, control.BroadcastRequest{
		Cat: args[0],
		Sec: args[1],
		Fld: args[2],
		Val: args[3],
		Aux: aux,
	})
	if err != nil {
		return err
	}
	fmt.Printf("delivered to %d clients\n", delivered)
	return nil
}

// parseAux turns trailing key=value arguments into an aux map.
func parseAux(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	aux := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid aux argument %q: expected key=value", arg)
		}
		aux[key] = value
	}
	return aux, nil
}
