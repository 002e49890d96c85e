// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import "github.com/statescope/statescope/wire"

// StateProvider supplies the host state the stream serves. The server
// calls it from its background loops, so implementations must be safe
// for concurrent use and must return in a few milliseconds at most;
// the provider does its own locking against the host's execution.
//
// Errors mean the provider cannot produce state right now. The server
// skips the affected snapshot or update cycle and tries again on the
// next trigger; it never retries eagerly and never stops.
type StateProvider interface {
	// HelloText returns the banner carried in the hello record's val
	// field.
	HelloText() string

	// FullSnapshot returns every observable field, in the order they
	// should reach a newly connected client.
	FullSnapshot() ([]wire.Record, error)

	// IncrementalUpdate returns the fields of one update at the given
	// verbosity tier, in delivery order. Each tier includes
	// everything the tier below it carries.
	IncrementalUpdate(tier wire.Tier) ([]wire.Record, error)
}
