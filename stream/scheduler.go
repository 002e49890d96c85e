// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package stream

// schedulerLoop drives periodic broadcasts. It rereads the
// configuration at every wake: an interval change reprograms the
// ticker for the following gap, so it takes effect on the next tick
// and never shortens the wait already in progress. Disabling the
// scheduler keeps the loop running but idle, which lets a control
// call re-enable it without restarting the server.
func (s *Server) schedulerLoop(stop <-chan struct{}) {
	defer s.wg.Done()

	interval := s.config.Interval()
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		next, tier, enabled := s.config.snapshot()
		if next != interval {
			interval = next
			ticker.Reset(interval)
		}

		s.ticks.Add(1)
		if !enabled {
			continue
		}
		// Idle servers stay cheap: with no clients there is nothing
		// to send and the provider is not queried at all.
		if s.registry.count() == 0 {
			continue
		}

		batch, err := s.provider.IncrementalUpdate(tier)
		if err != nil {
			s.logger.Warn("update unavailable, skipping cycle", "error", err)
			continue
		}
		s.Broadcast(batch)
	}
}
