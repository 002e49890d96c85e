// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"fmt"
	"sync"
	"time"

	"github.com/statescope/statescope/wire"
)

// DefaultInterval is the scheduler interval used when no other value
// is configured.
const DefaultInterval = 100 * time.Millisecond

// BroadcastConfig holds the scheduler's mutable settings. The
// scheduler rereads it on every wake, so changes apply within one
// interval of the call; no restart is involved. Invalid values are
// rejected at the setter and the prior value stays in force.
type BroadcastConfig struct {
	mu       sync.Mutex
	interval time.Duration
	tier     wire.Tier
	enabled  bool
}

// NewBroadcastConfig validates and returns a configuration.
func NewBroadcastConfig(interval time.Duration, tier wire.Tier, enabled bool) (*BroadcastConfig, error) {
	c := &BroadcastConfig{interval: DefaultInterval, tier: wire.TierStandard, enabled: enabled}
	if err := c.SetInterval(interval); err != nil {
		return nil, err
	}
	if err := c.SetTier(tier); err != nil {
		return nil, err
	}
	return c, nil
}

// Interval returns the current scheduler interval.
func (c *BroadcastConfig) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// SetInterval changes the scheduler interval, effective on the next
// wake. Non-positive intervals are rejected.
func (c *BroadcastConfig) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("broadcast interval must be positive, got %v", interval)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = interval
	return nil
}

// Tier returns the current verbosity tier.
func (c *BroadcastConfig) Tier() wire.Tier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tier
}

// SetTier changes the verbosity tier, effective on the next scheduled
// tick. Unknown tiers are rejected.
func (c *BroadcastConfig) SetTier(tier wire.Tier) error {
	switch tier {
	case wire.TierMinimal, wire.TierStandard, wire.TierFull:
	default:
		return fmt.Errorf("invalid tier %d", uint8(tier))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tier = tier
	return nil
}

// Enabled reports whether scheduled broadcasts run.
func (c *BroadcastConfig) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// SetEnabled turns scheduled broadcasts on or off. Event-driven
// broadcasts are unaffected.
func (c *BroadcastConfig) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// snapshot returns all settings under one lock acquisition.
func (c *BroadcastConfig) snapshot() (interval time.Duration, tier wire.Tier, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval, c.tier, c.enabled
}
