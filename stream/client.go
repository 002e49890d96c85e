// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"net"
	"sync"
	"time"

	"github.com/statescope/statescope/transport"
)

// client pairs a transport connection with the write lock that
// serializes all sends to it. The lock is held for a whole batch, so
// records from concurrent broadcast passes never interleave within
// one client's stream, and it is the synchronization point that makes
// "no sends after drop returns" hold: close sets the closed flag
// under the same lock the senders take.
type client struct {
	conn transport.Conn
	name string

	mu     sync.Mutex
	closed bool
}

func newClient(conn transport.Conn) *client {
	name := "unknown"
	if addr := conn.RemoteAddr(); addr != nil {
		name = addr.String()
	}
	return &client{conn: conn, name: name}
}

// send writes every line in order under one write deadline. Lines
// are pre-terminated record bytes; the first failed write aborts the
// rest of the batch.
func (c *client) send(lines [][]byte, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := c.conn.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// sendRaw writes bytes without record framing. Used for the telnet
// preamble only.
func (c *client) sendRaw(p []byte, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	_, err := c.conn.Write(p)
	return err
}

// close closes the transport once. Safe to call repeatedly and
// concurrently with send; it waits out any in-flight batch.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.conn.Close()
}

// alive runs the transport's liveness probe.
func (c *client) alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	return c.conn.Alive()
}
