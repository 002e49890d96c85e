// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/statescope/statescope/control"
	"github.com/statescope/statescope/lib/clock"
	"github.com/statescope/statescope/stream"
	"github.com/statescope/statescope/wire"
)

// startMock wires a simulated provider, a stream server, and a control
// socket together the way run does, and returns a control client
// talking to it. The fake clock never advances, so no scheduled
// broadcasts interleave with test traffic.
func startMock(t *testing.T) (*control.Client, *stream.Server, *simProvider) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.Fake(testEpoch)
	formatter := wire.NewFormatter("sim", "test", clk)
	prov := testSimProvider(t, 1)

	cfg, err := stream.NewBroadcastConfig(stream.DefaultInterval, wire.TierStandard, true)
	if err != nil {
		t.Fatalf("NewBroadcastConfig: %v", err)
	}
	srv, err := stream.New(stream.Options{
		Address:   "127.0.0.1:0",
		Provider:  prov,
		Formatter: formatter,
		Config:    cfg,
		Clock:     clk,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("stream.New: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})

	socket := filepath.Join(t.TempDir(), "ctl.sock")
	ctl := control.NewServer(socket, logger)
	registerActions(ctl, srv, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctl.Serve(ctx); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("control socket %s never appeared", socket)
		}
		time.Sleep(5 * time.Millisecond)
	}

	return control.NewClient(socket), srv, prov
}

type streamReader struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialMockStream(t *testing.T, addr net.Addr) *streamReader {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dialing stream: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &streamReader{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *streamReader) readPreamble() {
	c.t.Helper()
	buf := make([]byte, len(wire.Preamble()))
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(c.r, buf); err != nil {
		c.t.Fatalf("reading preamble: %v", err)
	}
	if !bytes.Equal(buf, wire.Preamble()) {
		c.t.Fatalf("preamble = %x, want %x", buf, wire.Preamble())
	}
}

func (c *streamReader) readLine() string {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := c.r.ReadString('\n')
	if err != nil {
		c.t.Fatalf("reading line: %v", err)
	}
	if !strings.HasSuffix(line, "\r\n") {
		c.t.Fatalf("line %q does not end in CRLF", line)
	}
	return strings.TrimSuffix(line, "\r\n")
}

// welcome consumes the preamble, hello, and snapshot that open every
// connection.
func (c *streamReader) welcome(snapshotLen int) {
	c.t.Helper()
	c.readPreamble()
	hello, err := wire.ParseRecord(c.readLine())
	if err != nil {
		c.t.Fatalf("parsing hello: %v", err)
	}
	if hello.Cat != "sys" || hello.Sec != "conn" || hello.Fld != "hello" {
		c.t.Fatalf("first record is %s/%s/%s, want sys/conn/hello", hello.Cat, hello.Sec, hello.Fld)
	}
	for range snapshotLen {
		c.readLine()
	}
}

func waitForClients(t *testing.T, srv *stream.Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for srv.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", srv.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStatusAction(t *testing.T) {
	t.Parallel()

	client, srv, _ := startMock(t)
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running {
		t.Error("status reports not running")
	}
	if got, want := status.PID, os.Getpid(); got != want {
		t.Errorf("status pid = %d, want %d", got, want)
	}
	if status.UptimeSeconds < 0 {
		t.Errorf("status uptime = %f, want non-negative", status.UptimeSeconds)
	}
	if got, want := status.Address, srv.Addr().String(); got != want {
		t.Errorf("status address = %q, want %q", got, want)
	}
	if got, want := status.IntervalMS, stream.DefaultInterval.Milliseconds(); got != want {
		t.Errorf("status interval_ms = %d, want %d", got, want)
	}
	if got, want := status.Tier, "standard"; got != want {
		t.Errorf("status tier = %q, want %q", got, want)
	}
	if !status.Enabled {
		t.Error("status reports broadcasts disabled")
	}
	if status.Clients != 0 {
		t.Errorf("status clients = %d, want 0", status.Clients)
	}
	if status.Version == "" {
		t.Error("status version is empty")
	}
}

func TestEnableDisableActions(t *testing.T) {
	t.Parallel()

	client, srv, _ := startMock(t)
	ctx := context.Background()

	if err := client.Disable(ctx); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if srv.Config().Enabled() {
		t.Error("broadcasts still enabled after disable")
	}
	if err := client.Enable(ctx); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if !srv.Config().Enabled() {
		t.Error("broadcasts still disabled after enable")
	}
}

func TestSetIntervalAction(t *testing.T) {
	t.Parallel()

	client, srv, _ := startMock(t)
	ctx := context.Background()

	if err := client.SetInterval(ctx, 250*time.Millisecond); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}
	if got, want := srv.Config().Interval(), 250*time.Millisecond; got != want {
		t.Errorf("interval = %v, want %v", got, want)
	}

	// A rejected value surfaces as an error and leaves the previous
	// interval in effect.
	if err := client.SetInterval(ctx, 0); err == nil {
		t.Fatal("SetInterval(0) succeeded, want error")
	}
	if got, want := srv.Config().Interval(), 250*time.Millisecond; got != want {
		t.Errorf("interval after rejected change = %v, want %v", got, want)
	}
}

func TestSetTierAction(t *testing.T) {
	t.Parallel()

	client, srv, _ := startMock(t)
	ctx := context.Background()

	if err := client.SetTier(ctx, wire.TierFull); err != nil {
		t.Fatalf("SetTier: %v", err)
	}
	if got, want := srv.Config().Tier(), wire.TierFull; got != want {
		t.Errorf("tier = %v, want %v", got, want)
	}

	err := client.Call(ctx, control.ActionSetTier, control.SetTierRequest{Tier: "verbose"}, nil)
	if err == nil {
		t.Fatal("set-tier with unknown tier succeeded, want error")
	}
	if got, want := srv.Config().Tier(), wire.TierFull; got != want {
		t.Errorf("tier after rejected change = %v, want %v", got, want)
	}
}

func TestBroadcastActionReachesStreamClients(t *testing.T) {
	t.Parallel()

	client, srv, prov := startMock(t)
	ctx := context.Background()

	snapshot, err := prov.FullSnapshot()
	if err != nil {
		t.Fatalf("FullSnapshot: %v", err)
	}
	consumer := dialMockStream(t, srv.Addr())
	consumer.welcome(len(snapshot))
	waitForClients(t, srv, 1)

	delivered, err := client.Broadcast(ctx, control.BroadcastRequest{
		Cat: "sys",
		Sec: "event",
		Fld: "note",
		Val: "marker",
		Aux: map[string]string{"origin": "operator"},
	})
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}

	parsed, err := wire.ParseRecord(consumer.readLine())
	if err != nil {
		t.Fatalf("parsing broadcast record: %v", err)
	}
	if parsed.Cat != "sys" || parsed.Sec != "event" || parsed.Fld != "note" || parsed.Val != "marker" {
		t.Errorf("record = %s/%s/%s %q, want sys/event/note \"marker\"", parsed.Cat, parsed.Sec, parsed.Fld, parsed.Val)
	}
	if got, want := parsed.Aux["origin"], "operator"; got != want {
		t.Errorf("aux origin = %q, want %q", got, want)
	}
	if !parsed.HasTS {
		t.Error("broadcast record has no timestamp")
	}
}

func TestBroadcastActionRequiresTags(t *testing.T) {
	t.Parallel()

	client, _, _ := startMock(t)
	_, err := client.Broadcast(context.Background(), control.BroadcastRequest{Sec: "event", Val: "x"})
	if err == nil {
		t.Fatal("broadcast without cat and fld succeeded, want error")
	}
}
