// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package control

// Actions understood by a stream daemon's control socket.
const (
	// ActionStatus reports server state and counters. No payload.
	ActionStatus = "status"

	// ActionEnable turns scheduled broadcasts on. No payload.
	ActionEnable = "enable"

	// ActionDisable turns scheduled broadcasts off. Event broadcasts
	// and connected clients are unaffected. No payload.
	ActionDisable = "disable"

	// ActionSetInterval changes the scheduler interval. Payload:
	// SetIntervalRequest.
	ActionSetInterval = "set-interval"

	// ActionSetTier changes the update verbosity tier. Payload:
	// SetTierRequest.
	ActionSetTier = "set-tier"

	// ActionBroadcast pushes one caller-supplied record to every
	// connected client immediately. Payload: BroadcastRequest.
	ActionBroadcast = "broadcast"
)

// StatusReply answers ActionStatus.
type StatusReply struct {
	Running       bool    `cbor:"running"`
	PID           int     `cbor:"pid"`
	UptimeSeconds float64 `cbor:"uptime_seconds"`
	Address       string  `cbor:"address"`
	Clients       int     `cbor:"clients"`
	IntervalMS    int64   `cbor:"interval_ms"`
	Tier          string  `cbor:"tier"`
	Enabled       bool    `cbor:"enabled"`
	Ticks         uint64  `cbor:"ticks"`
	Broadcasts    uint64  `cbor:"broadcasts"`
	Records       uint64  `cbor:"records"`
	Dropped       uint64  `cbor:"dropped"`
	Version       string  `cbor:"version"`
}

// SetIntervalRequest carries the new scheduler interval in
// milliseconds.
type SetIntervalRequest struct {
	IntervalMS int64 `cbor:"interval_ms"`
}

// SetTierRequest carries the new verbosity tier by wire name.
type SetTierRequest struct {
	Tier string `cbor:"tier"`
}

// BroadcastRequest is one record to push, pre-formatting. The daemon
// stamps it with its own src domain and timestamp.
type BroadcastRequest struct {
	Cat string            `cbor:"cat"`
	Sec string            `cbor:"sec"`
	Fld string            `cbor:"fld"`
	Val string            `cbor:"val"`
	Aux map[string]string `cbor:"aux,omitempty"`
}

// BroadcastReply answers ActionBroadcast with the number of clients
// that received the record.
type BroadcastReply struct {
	Delivered int `cbor:"delivered"`
}
