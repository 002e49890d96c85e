// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// Package stream implements the StateScope fan-out server: a TCP
// push channel that greets every client with a hello record and a
// full state snapshot, then delivers incremental updates until the
// client disconnects.
//
// The server owns two background loops. The accept loop waits for
// connections in bounded polls and runs the dead-client reaper
// whenever a poll comes back empty. The scheduler loop wakes on the
// configured interval, rereads its configuration so interval, tier,
// and enabled changes apply without a restart, and fans one update
// batch out to every registered client. Event-driven pushes enter
// through the same Broadcast method the scheduler uses, so both
// triggers share one send path; neither defers to the other, and a
// burst of event broadcasts never delays or absorbs a scheduled
// tick.
//
// State is read through the StateProvider interface, never directly.
// Provider failures are contained: a failed snapshot or update skips
// that one welcome or cycle and the server keeps running. Client
// failures are equally contained: a failed or stalled send drops
// that client at the end of the pass and no error reaches the
// provider side.
//
// The welcome sequence goes out before the client is registered, so
// a broadcast running concurrently with a new connection can never
// interleave records into the middle of the snapshot. A client
// therefore sees, in order: the telnet preamble, the hello record,
// every snapshot record, then updates.
package stream
