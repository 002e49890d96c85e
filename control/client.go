// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/statescope/statescope/lib/codec"
	"github.com/statescope/statescope/wire"
)

// Client calls a stream daemon's control socket. Each call opens its
// own connection, so a Client is stateless and safe for concurrent
// use.
type Client struct {
	path    string
	timeout time.Duration
}

// NewClient returns a client for the socket at path.
func NewClient(path string) *Client {
	return &Client{path: path, timeout: 5 * time.Second}
}

// Call sends one request and decodes the response data into reply.
// payload and reply may each be nil. A response with ok unset comes
// back as an error carrying the server's message.
func (c *Client) Call(ctx context.Context, action string, payload, reply any) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.path)
	if err != nil {
		return fmt.Errorf("dialing control socket %s: %w", c.path, err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	conn.SetDeadline(deadline)

	req := request{Action: action}
	if payload != nil {
		encoded, err := codec.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", action, err)
		}
		req.Payload = encoded
	}
	if err := codec.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("sending %s request: %w", action, err)
	}
	// Half-close tells the server the request is complete.
	if uc, ok := conn.(*net.UnixConn); ok {
		uc.CloseWrite()
	}

	var resp response
	if err := codec.NewDecoder(io.LimitReader(conn, maxMessageBytes)).Decode(&resp); err != nil {
		return fmt.Errorf("reading %s response: %w", action, err)
	}
	if !resp.OK {
		if resp.Error == "" {
			resp.Error = "unspecified error"
		}
		return fmt.Errorf("%s: %s", action, resp.Error)
	}
	if reply != nil && resp.Data != nil {
		if err := codec.Unmarshal(resp.Data, reply); err != nil {
			return fmt.Errorf("decoding %s reply: %w", action, err)
		}
	}
	return nil
}

// Status reports the daemon's state and counters.
func (c *Client) Status(ctx context.Context) (*StatusReply, error) {
	var reply StatusReply
	if err := c.Call(ctx, ActionStatus, nil, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Enable turns scheduled broadcasts on.
func (c *Client) Enable(ctx context.Context) error {
	return c.Call(ctx, ActionEnable, nil, nil)
}

// Disable turns scheduled broadcasts off.
func (c *Client) Disable(ctx context.Context) error {
	return c.Call(ctx, ActionDisable, nil, nil)
}

// SetInterval changes the scheduler interval.
func (c *Client) SetInterval(ctx context.Context, interval time.Duration) error {
	req := SetIntervalRequest{IntervalMS: interval.Milliseconds()}
	return c.Call(ctx, ActionSetInterval, req, nil)
}

// SetTier changes the update verbosity tier.
func (c *Client) SetTier(ctx context.Context, tier wire.Tier) error {
	return c.Call(ctx, ActionSetTier, SetTierRequest{Tier: tier.String()}, nil)
}

// Broadcast pushes one record to every connected client and returns
// how many received it.
func (c *Client) Broadcast(ctx context.Context, req BroadcastRequest) (int, error) {
	var reply BroadcastReply
	if err := c.Call(ctx, ActionBroadcast, req, &reply); err != nil {
		return 0, err
	}
	return reply.Delivered, nil
}
