// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/statescope/statescope/control"
	"github.com/statescope/statescope/lib/codec"
	"github.com/statescope/statescope/lib/version"
	"github.com/statescope/statescope/stream"
	"github.com/statescope/statescope/wire"
)

// registerActions binds the control protocol to a stream server.
// start is when the daemon came up, for the status uptime field.
// Configuration changes go through BroadcastConfig's validating
// setters, so a bad value is rejected here and the running value
// stays in force.
func registerActions(ctl *control.Server, srv *stream.Server, start time.Time) {
	ctl.Handle(control.ActionStatus, func(context.Context, codec.RawMessage) (any, error) {
		stats := srv.Stats()
		cfg := srv.Config()
		reply := control.StatusReply{
			PID:           os.Getpid(),
			UptimeSeconds: time.Since(start).Seconds(),
			Clients:       srv.ClientCount(),
			IntervalMS:    cfg.Interval().Milliseconds(),
			Tier:          cfg.Tier().String(),
			Enabled:       cfg.Enabled(),
			Ticks:         stats.Ticks,
			Broadcasts:    stats.Broadcasts,
			Records:       stats.Records,
			Dropped:       stats.DroppedClients,
			Version:       version.Info(),
		}
		if addr := srv.Addr(); addr != nil {
			reply.Running = true
			reply.Address = addr.String()
		}
		return reply, nil
	})

	ctl.Handle(control.ActionEnable, func(context.Context, codec.RawMessage) (any, error) {
		srv.Config().SetEnabled(true)
		return nil, nil
	})

	ctl.Handle(control.ActionDisable, func(context.Context, codec.RawMessage) (any, error) {
		srv.Config().SetEnabled(false)
		return nil, nil
	})

	ctl.Handle(control.ActionSetInterval, func(_ context.Context, payload codec.RawMessage) (any, error) {
		var req control.SetIntervalRequest
		if err := codec.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("invalid set-interval request: %w", err)
		}
		interval := time.Duration(req.IntervalMS) * time.Millisecond
		if err := srv.Config().SetInterval(interval); err != nil {
			return nil, err
		}
		return nil, nil
	})

	ctl.Handle(control.ActionSetTier, func(_ context.Context, payload codec.RawMessage) (any, error) {
		var req control.SetTierRequest
		if err := codec.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("invalid set-tier request: %w", err)
		}
		tier, err := wire.ParseTier(req.Tier)
		if err != nil {
			return nil, err
		}
		if err := srv.Config().SetTier(tier); err != nil {
			return nil, err
		}
		return nil, nil
	})

	ctl.Handle(control.ActionBroadcast, func(_ context.Context, payload codec.RawMessage) (any, error) {
		var req control.BroadcastRequest
		if err := codec.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("invalid broadcast request: %w", err)
		}
		if req.Cat == "" || req.Fld == "" {
			return nil, fmt.Errorf("broadcast request requires cat and fld")
		}
		rec := srv.Formatter().Stamped(req.Cat, req.Sec, req.Fld, req.Val, req.Aux)
		delivered := srv.Broadcast([]wire.Record{rec})
		return control.BroadcastReply{Delivered: delivered}, nil
	})
}
