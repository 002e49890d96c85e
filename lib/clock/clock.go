// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations the streaming core depends on.
// Inject Real() in production and Fake() in tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a Ticker delivering ticks on C at the given
	// interval. Panics if d <= 0, matching time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers periodic ticks on C. The channel has capacity 1; a
// consumer that falls behind loses ticks rather than queueing them,
// matching time.Ticker.
type Ticker struct {
	// C delivers ticks.
	C <-chan time.Time

	stop  func()
	reset func(time.Duration)
}

// Stop turns the ticker off. No ticks arrive after Stop returns. Stop
// does not close C.
func (t *Ticker) Stop() { t.stop() }

// Reset restarts the tick cycle with a new interval. The next tick
// arrives one full new interval after the call.
func (t *Ticker) Reset(d time.Duration) { t.reset(d) }
