// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package transport

import "golang.org/x/sys/unix"

// alive peeks one byte with MSG_PEEK|MSG_DONTWAIT. A zero-byte read
// is the peer's orderly shutdown; EAGAIN means the connection is open
// with nothing pending; any other error counts as dead. Pending data
// is left in the socket buffer untouched.
func (c *tcpConn) alive() bool {
	if c.raw == nil {
		return true
	}
	open := true
	err := c.raw.Read(func(fd uintptr) bool {
		var buf [1]byte
		n, _, rerr := unix.Recvfrom(int(fd), buf[:], unix.MSG_PEEK|unix.MSG_DONTWAIT)
		switch {
		case rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK:
			// Open, nothing buffered.
		case rerr != nil:
			open = false
		case n == 0:
			open = false
		}
		// Returning true keeps RawConn.Read from parking the
		// goroutine until the socket turns readable.
		return true
	})
	if err != nil {
		return false
	}
	return open
}
