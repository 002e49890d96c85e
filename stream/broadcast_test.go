// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/statescope/statescope/wire"
)

func (p *testProvider) snapshotRecords() []wire.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

func TestWelcomeExactSequence(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	c := dialStream(t, ts.srv.Addr())

	hello, lines := c.welcome(3)
	if got, want := hello.Src, "sim"; got != want {
		t.Errorf("hello src = %q, want %q", got, want)
	}
	if got, want := hello.Val, "StateScope Test Stream"; got != want {
		t.Errorf("hello val = %q, want %q", got, want)
	}
	if got, want := hello.Aux["ver"], "test"; got != want {
		t.Errorf("hello ver = %q, want %q", got, want)
	}
	if !hello.HasTS {
		t.Error("hello record has no timestamp")
	}

	for i, rec := range ts.prov.snapshotRecords() {
		if lines[i] != string(rec) {
			t.Errorf("snapshot line %d = %q, want %q", i, lines[i], rec)
		}
	}
}

func TestScheduledBroadcastE2E(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	c := dialStream(t, ts.srv.Addr())
	c.welcome(3)
	waitFor(t, "registration", func() bool { return ts.srv.ClientCount() == 1 })

	ts.clk.WaitForTickers(1)
	ts.clk.Advance(DefaultInterval)
	first := c.readParsed()
	ts.clk.Advance(DefaultInterval)
	second := c.readParsed()

	for _, upd := range []*wire.Parsed{first, second} {
		if upd.Cat != "test" || upd.Sec != "counter" {
			t.Fatalf("update tags = %s/%s, want test/counter", upd.Cat, upd.Sec)
		}
		if !upd.HasTS {
			t.Fatal("update record has no timestamp")
		}
	}

	v1, err := strconv.Atoi(first.Val)
	if err != nil {
		t.Fatalf("counter value %q: %v", first.Val, err)
	}
	v2, err := strconv.Atoi(second.Val)
	if err != nil {
		t.Fatalf("counter value %q: %v", second.Val, err)
	}
	if v2 <= v1 {
		t.Errorf("counter values %d then %d, want strictly increasing", v1, v2)
	}
	if second.TS <= first.TS {
		t.Errorf("timestamps %d then %d, want strictly increasing", first.TS, second.TS)
	}
}

func TestEventBroadcastTwoClients(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	c1 := dialStream(t, ts.srv.Addr())
	c1.welcome(3)
	c2 := dialStream(t, ts.srv.Addr())
	c2.welcome(3)
	waitFor(t, "both registrations", func() bool { return ts.srv.ClientCount() == 2 })

	event := ts.srv.Formatter().Stamped("sys", "event", "breakpoint", "hit", nil)
	if got, want := ts.srv.Broadcast([]wire.Record{event}), 2; got != want {
		t.Errorf("Broadcast delivered to %d clients, want %d", got, want)
	}
	l1, l2 := c1.readLine(), c2.readLine()
	if l1 != l2 || l1 != string(event) {
		t.Errorf("clients received %q and %q, want both %q", l1, l2, event)
	}

	c1.conn.Close()
	waitFor(t, "dead client reaped", func() bool { return ts.srv.ClientCount() == 1 })

	second := ts.srv.Formatter().Stamped("sys", "event", "resume", "run", nil)
	if got, want := ts.srv.Broadcast([]wire.Record{second}), 1; got != want {
		t.Errorf("Broadcast delivered to %d clients, want %d", got, want)
	}
	if got := c2.readLine(); got != string(second) {
		t.Errorf("surviving client received %q, want %q", got, second)
	}
}

func TestIdleSchedulerSkipsProvider(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	ts.clk.WaitForTickers(1)

	ts.clk.Advance(DefaultInterval)
	waitFor(t, "first tick", func() bool { return ts.srv.Stats().Ticks >= 1 })
	ts.clk.Advance(DefaultInterval)
	waitFor(t, "second tick", func() bool { return ts.srv.Stats().Ticks >= 2 })

	if got := ts.prov.updates(); got != 0 {
		t.Errorf("provider update calls = %d with zero clients, want 0", got)
	}
	if got := ts.prov.snapshots(); got != 0 {
		t.Errorf("provider snapshot calls = %d with zero clients, want 0", got)
	}
}

func TestDisabledSchedulerIdlesUntilReenabled(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, func(opts *Options, _ *testProvider) {
		config, err := NewBroadcastConfig(DefaultInterval, wire.TierStandard, false)
		if err != nil {
			t.Fatalf("NewBroadcastConfig: %v", err)
		}
		opts.Config = config
	})
	c := dialStream(t, ts.srv.Addr())
	c.welcome(3)
	waitFor(t, "registration", func() bool { return ts.srv.ClientCount() == 1 })

	ts.clk.WaitForTickers(1)
	ts.clk.Advance(DefaultInterval)
	waitFor(t, "disabled tick", func() bool { return ts.srv.Stats().Ticks >= 1 })
	if got := ts.prov.updates(); got != 0 {
		t.Fatalf("provider update calls = %d while disabled, want 0", got)
	}

	ts.srv.Config().SetEnabled(true)
	ts.clk.Advance(DefaultInterval)
	upd := c.readParsed()
	if upd.Sec != "counter" {
		t.Errorf("post-enable record sec = %q, want %q", upd.Sec, "counter")
	}
}

func TestIntervalChangeTakesEffectNextTick(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	c := dialStream(t, ts.srv.Addr())
	c.welcome(3)
	waitFor(t, "registration", func() bool { return ts.srv.ClientCount() == 1 })

	ts.clk.WaitForTickers(1)
	ts.clk.Advance(100 * time.Millisecond)
	c.readParsed()

	// The wait already in progress was programmed for 100ms and must
	// run to completion; the 50ms cadence starts after it.
	if err := ts.srv.Config().SetInterval(50 * time.Millisecond); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}

	ts.clk.Advance(50 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if got := ts.prov.updates(); got != 1 {
		t.Fatalf("update fired %d times halfway through the old interval, want 1", got)
	}

	ts.clk.Advance(50 * time.Millisecond)
	c.readParsed()
	if got := ts.prov.updates(); got != 2 {
		t.Fatalf("update calls after full old interval = %d, want 2", got)
	}

	ts.clk.Advance(50 * time.Millisecond)
	c.readParsed()
	if got := ts.prov.updates(); got != 3 {
		t.Fatalf("update calls after one new interval = %d, want 3", got)
	}
}

func TestTierChangeTakesEffectNextTick(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	c := dialStream(t, ts.srv.Addr())
	c.welcome(3)
	waitFor(t, "registration", func() bool { return ts.srv.ClientCount() == 1 })

	ts.clk.WaitForTickers(1)
	ts.clk.Advance(DefaultInterval)
	c.readParsed()
	if got, want := ts.prov.tier(), wire.TierStandard; got != want {
		t.Errorf("first tick tier = %v, want %v", got, want)
	}

	if err := ts.srv.Config().SetTier(wire.TierFull); err != nil {
		t.Fatalf("SetTier: %v", err)
	}
	ts.clk.Advance(DefaultInterval)
	c.readParsed()
	if got, want := ts.prov.tier(), wire.TierFull; got != want {
		t.Errorf("second tick tier = %v, want %v", got, want)
	}
}

func TestEventBroadcastsNeverDisplaceScheduledTick(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	c := dialStream(t, ts.srv.Addr())
	c.welcome(3)
	waitFor(t, "registration", func() bool { return ts.srv.ClientCount() == 1 })
	ts.clk.WaitForTickers(1)

	event := ts.srv.Formatter().Stamped("sys", "event", "mode", "stepping", nil)
	for range 3 {
		ts.srv.Broadcast([]wire.Record{event})
	}
	for range 3 {
		if got := c.readLine(); got != string(event) {
			t.Fatalf("event line = %q, want %q", got, event)
		}
	}

	ts.clk.Advance(DefaultInterval)
	upd := c.readParsed()
	if upd.Sec != "counter" {
		t.Errorf("post-event scheduled record sec = %q, want %q", upd.Sec, "counter")
	}
	if got, want := ts.srv.Stats().Broadcasts, uint64(4); got != want {
		t.Errorf("broadcast passes = %d, want %d", got, want)
	}
}

func TestDeadClientPrunedOthersUnaffected(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	c1 := dialStream(t, ts.srv.Addr())
	c1.welcome(3)
	c2 := dialStream(t, ts.srv.Addr())
	c2.welcome(3)
	waitFor(t, "both registrations", func() bool { return ts.srv.ClientCount() == 2 })

	c1.conn.Close()

	pruned := false
	for i := 1; i <= 50; i++ {
		rec := ts.srv.Formatter().Stamped("test", "seq", "n", strconv.Itoa(i), nil)
		ts.srv.Broadcast([]wire.Record{rec})
		if got := c2.readParsed(); got.Val != strconv.Itoa(i) {
			t.Fatalf("surviving client got seq %q, want %d", got.Val, i)
		}
		if ts.srv.ClientCount() == 1 {
			pruned = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !pruned {
		t.Fatal("dead client still registered after 50 broadcast passes")
	}
	if got := ts.srv.Stats().DroppedClients; got < 1 {
		t.Errorf("DroppedClients = %d, want at least 1", got)
	}
}

func TestReaperDropsIdleDeadClient(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	c := dialStream(t, ts.srv.Addr())
	c.welcome(3)
	waitFor(t, "registration", func() bool { return ts.srv.ClientCount() == 1 })

	// No broadcast traffic at all; only the probe can notice.
	c.conn.Close()
	waitFor(t, "reaper prune", func() bool { return ts.srv.ClientCount() == 0 })
	if got := ts.srv.Stats().DroppedClients; got != 1 {
		t.Errorf("DroppedClients = %d, want 1", got)
	}
}

func TestSnapshotUnavailableStillGreets(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, func(_ *Options, prov *testProvider) {
		prov.failSnapshot = true
	})
	c := dialStream(t, ts.srv.Addr())
	c.readPreamble()
	hello := c.readParsed()
	if hello.Fld != "hello" {
		t.Fatalf("first record fld = %q, want hello", hello.Fld)
	}
	waitFor(t, "registration", func() bool { return ts.srv.ClientCount() == 1 })

	ts.clk.WaitForTickers(1)
	ts.clk.Advance(DefaultInterval)
	upd := c.readParsed()
	if upd.Sec != "counter" {
		t.Errorf("record after hello sec = %q, want counter with no snapshot between", upd.Sec)
	}
}

func TestUpdateUnavailableSkipsCycle(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	c := dialStream(t, ts.srv.Addr())
	c.welcome(3)
	waitFor(t, "registration", func() bool { return ts.srv.ClientCount() == 1 })

	ts.prov.setFailUpdate(true)
	ts.clk.WaitForTickers(1)
	ts.clk.Advance(DefaultInterval)
	waitFor(t, "failed update attempt", func() bool { return ts.prov.updates() == 1 })
	if got := ts.srv.Stats().Broadcasts; got != 0 {
		t.Errorf("broadcast passes after failed cycle = %d, want 0", got)
	}

	ts.prov.setFailUpdate(false)
	ts.clk.Advance(DefaultInterval)
	upd := c.readParsed()
	if upd.Sec != "counter" {
		t.Errorf("post-recovery record sec = %q, want counter", upd.Sec)
	}
	if got := ts.srv.ClientCount(); got != 1 {
		t.Errorf("ClientCount = %d after provider failure, want 1", got)
	}
}

func TestWelcomeAtomicUnderBroadcastLoad(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)

	// One established client keeps the storm writing to a real
	// socket; a goroutine drains it so the server never stalls.
	c1 := dialStream(t, ts.srv.Addr())
	c1.welcome(3)
	waitFor(t, "registration", func() bool { return ts.srv.ClientCount() == 1 })
	go io.Copy(io.Discard, c1.conn)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		mark := ts.srv.Formatter().Stamped("sys", "event", "storm", "x", nil)
		for {
			select {
			case <-stop:
				return
			default:
				ts.srv.Broadcast([]wire.Record{mark})
			}
		}
	}()
	defer wg.Wait()
	defer close(stop)

	// A client connecting mid-storm must still see an unbroken
	// welcome: hello then the whole snapshot, with no storm record
	// interleaved before registration completes.
	c2 := dialStream(t, ts.srv.Addr())
	hello, lines := c2.welcome(3)
	if hello.Fld != "hello" {
		t.Errorf("first record fld = %q, want hello", hello.Fld)
	}
	for i, rec := range ts.prov.snapshotRecords() {
		if lines[i] != string(rec) {
			t.Errorf("snapshot line %d = %q, want %q", i, lines[i], rec)
		}
	}
}
