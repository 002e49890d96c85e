// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at initial. Time moves only through
// Advance. Safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{now: initial}
	c.registered = sync.NewCond(&c.mu)
	return c
}

// FakeClock is a deterministic Clock for tests. Tickers created on it
// fire during Advance, earliest deadline first, once per elapsed
// interval. Sends to a ticker channel never block; a full channel
// drops the tick, matching time.Ticker.
type FakeClock struct {
	mu         sync.Mutex
	now        time.Time
	tickers    []*fakeTicker
	registered *sync.Cond
}

type fakeTicker struct {
	deadline time.Time
	interval time.Duration
	ch       chan time.Time
	stopped  bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTicker registers a ticker firing every d. Panics if d <= 0.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: NewTicker interval must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pending := &fakeTicker{
		deadline: c.now.Add(d),
		interval: d,
		ch:       make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, pending)
	c.registered.Broadcast()

	return &Ticker{
		C: pending.ch,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			pending.stopped = true
		},
		reset: func(d time.Duration) {
			c.mu.Lock()
			defer c.mu.Unlock()
			pending.interval = d
			pending.deadline = c.now.Add(d)
			pending.stopped = false
			c.registered.Broadcast()
		},
	}
}

// Advance moves the clock forward by d and fires every ticker whose
// deadline falls within the new time. When several deadlines are due,
// they fire earliest first, interleaved across tickers, so multi-timer
// tests observe a single deterministic order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	target := c.now
	c.mu.Unlock()

	for {
		ch, fireAt, ok := c.popDue(target)
		if !ok {
			return
		}
		select {
		case ch <- fireAt:
		default:
		}
	}
}

// popDue finds the earliest-deadline ticker due at or before target,
// advances its deadline by one interval, and hands back its channel
// and fire time.
func (c *FakeClock) popDue(target time.Time) (chan time.Time, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due *fakeTicker
	for _, pending := range c.tickers {
		if pending.stopped || pending.deadline.After(target) {
			continue
		}
		if due == nil || pending.deadline.Before(due.deadline) {
			due = pending
		}
	}
	if due == nil {
		return nil, time.Time{}, false
	}
	fireAt := due.deadline
	due.deadline = fireAt.Add(due.interval)
	return due.ch, fireAt, true
}

// WaitForTickers blocks until at least n tickers are registered and
// running. Call it after starting the goroutine under test so that a
// subsequent Advance is guaranteed to reach the goroutine's ticker.
func (c *FakeClock) WaitForTickers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.activeLocked() < n {
		c.registered.Wait()
	}
}

// TickerCount returns the number of registered, non-stopped tickers.
func (c *FakeClock) TickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked()
}

func (c *FakeClock) activeLocked() int {
	active := 0
	for _, pending := range c.tickers {
		if !pending.stopped {
			active++
		}
	}
	return active
}
