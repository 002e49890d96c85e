// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"github.com/statescope/statescope/lib/netutil"
	"github.com/statescope/statescope/wire"
)

// Broadcast fans batch out to every registered client and returns
// how many clients received the full batch. Both the scheduler and
// event-driven callers use this one entry point, and the two never
// coalesce: every trigger runs its own complete pass, so an event
// burst between ticks produces extra passes rather than displacing
// the scheduled one.
//
// Each client's stream is independent. A failed send marks that
// client for removal and the pass moves on; marked clients are
// dropped after the pass so the membership being iterated never
// mutates mid-iteration. Partial delivery is the expected outcome
// when clients vanish, not an error.
func (s *Server) Broadcast(batch []wire.Record) int {
	if len(batch) == 0 {
		return 0
	}
	lines := terminated(batch)

	var delivered int
	var failed []*client
	for _, c := range s.registry.snapshot() {
		if err := c.send(lines, s.writeTimeout); err != nil {
			if !netutil.IsExpectedClose(err) {
				s.logger.Debug("send failed", "client", c.name, "error", err)
			}
			failed = append(failed, c)
			continue
		}
		delivered++
		s.records.Add(uint64(len(batch)))
	}
	for _, c := range failed {
		s.drop(c, "send failure")
	}

	s.broadcasts.Add(1)
	return delivered
}

// terminated serializes a batch to CRLF lines once, so a fan-out to
// N clients does not re-terminate each record N times.
func terminated(batch []wire.Record) [][]byte {
	lines := make([][]byte, len(batch))
	for i, rec := range batch {
		lines[i] = rec.Terminated()
	}
	return lines
}
