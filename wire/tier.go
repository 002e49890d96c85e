// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "fmt"

// Tier selects how much state an incremental update carries. Each
// tier's field set is a strict superset of the one below it.
type Tier uint8

const (
	// TierMinimal is core scalar state only.
	TierMinimal Tier = iota

	// TierStandard adds derived boolean and status flags.
	TierStandard

	// TierFull adds bulk regions such as memory pages and the
	// display buffer.
	TierFull
)

// String returns the tier's wire name.
func (t Tier) String() string {
	switch t {
	case TierMinimal:
		return "minimal"
	case TierStandard:
		return "standard"
	case TierFull:
		return "full"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// ParseTier parses a tier name as produced by String.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "minimal":
		return TierMinimal, nil
	case "standard":
		return TierStandard, nil
	case "full":
		return TierFull, nil
	default:
		return 0, fmt.Errorf("unknown tier %q (want minimal, standard, or full)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	switch t {
	case TierMinimal, TierStandard, TierFull:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("invalid tier %d", uint8(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
