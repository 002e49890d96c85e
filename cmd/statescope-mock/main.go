// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// Statescope-mock runs the StateScope stream server against a
// simulated machine. It exists so consumers, dashboards, and capture
// tooling can be developed and tested without embedding the server in
// a real host process.
//
// The daemon listens on a TCP stream address for consumers and on a
// unix control socket for management. The control socket accepts six
// actions: status, enable, disable, set-interval, set-tier, and
// broadcast. The simulated machine advances deterministically from a
// configured seed and emits a mode-change event record every 64
// updates, which exercises the event-driven broadcast path alongside
// the scheduled one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/statescope/statescope/control"
	"github.com/statescope/statescope/lib/clock"
	"github.com/statescope/statescope/lib/config"
	"github.com/statescope/statescope/lib/process"
	"github.com/statescope/statescope/lib/version"
	"github.com/statescope/statescope/stream"
	"github.com/statescope/statescope/wire"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		showVersion bool
		configPath  string
	)
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.StringVar(&configPath, "config", "", "path to statescope.yaml (default $STATESCOPE_CONFIG, else built-in defaults)")
	flag.Parse()

	if showVersion {
		version.Print("statescope-mock")
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.Real()
	formatter := wire.NewFormatter(cfg.Domain, version.Short(), clk)
	provider := newSimProvider(formatter, cfg.ServiceName, cfg.Simulation)

	tier, err := wire.ParseTier(cfg.Stream.Tier)
	if err != nil {
		return err
	}
	broadcastConfig, err := stream.NewBroadcastConfig(time.Duration(cfg.Stream.Interval), tier, cfg.Stream.Enabled)
	if err != nil {
		return err
	}

	srv, err := stream.New(stream.Options{
		Address:   cfg.Stream.Address,
		Provider:  provider,
		Formatter: formatter,
		Config:    broadcastConfig,
		Clock:     clk,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	ctl := control.NewServer(cfg.Control.Socket, logger)
	registerActions(ctl, srv, time.Now())

	ctlDone := make(chan error, 1)
	go func() {
		ctlDone <- ctl.Serve(ctx)
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case rec := <-provider.Events():
				srv.Broadcast([]wire.Record{rec})
			}
		}
	}()

	logger.Info("statescope mock running",
		"stream", srv.Addr().String(),
		"control", cfg.Control.Socket,
		"domain", cfg.Domain,
		"interval", time.Duration(cfg.Stream.Interval),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	if err := <-ctlDone; err != nil {
		logger.Error("control server error", "error", err)
	}
	return srv.Stop()
}

// loadConfig resolves configuration precedence: the --config flag,
// then STATESCOPE_CONFIG, then built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("STATESCOPE_CONFIG") != "" {
		return config.Load()
	}
	cfg := config.Default()
	cfg.ExpandVariables()
	return cfg, nil
}
