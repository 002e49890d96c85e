// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for the
// broadcast scheduler and everything else that needs the current time.
//
// Production code accepts a Clock parameter instead of calling time.Now
// or time.NewTicker directly. Real() provides standard library
// behavior; Fake() provides a deterministic clock for tests that
// advances only when Advance is called.
//
// The interface deliberately covers scheduling only. Socket deadlines
// (SetReadDeadline, SetWriteDeadline) are kernel wall-clock operations
// that a fake clock cannot drive, so transport code keeps using the
// time package for those.
//
// Test wiring:
//
//	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	server := stream.New(stream.Options{Clock: clk, ...})
//	server.Start()
//	clk.WaitForTickers(1)               // scheduler ticker registered
//	clk.Advance(100 * time.Millisecond) // fire one tick deterministically
//
// WaitForTickers removes the race between the goroutine under test
// registering its ticker and the test advancing the clock.
package clock
