// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport provides the socket primitives under the stream
// server: bounded-wait accept, address reuse, and a non-consuming
// liveness probe. It carries no framing or broadcast logic; platform
// differences stay behind this package's interfaces and never reach
// the layers above.
package transport

import (
	"errors"
	"net"
	"time"
)

// ErrAcceptTimeout is returned by Listener.Accept when the bounded
// wait expires with no pending connection. It is the normal idle
// outcome, not a failure.
var ErrAcceptTimeout = errors.New("accept timed out")

// Listener accepts stream connections with a bounded wait so the
// owning loop can interleave other work between attempts.
type Listener interface {
	// Accept waits up to timeout for a connection. Returns
	// ErrAcceptTimeout when the wait expires and a non-timeout error
	// once the listener is closed.
	Accept(timeout time.Duration) (Conn, error)

	// Close closes the listening socket, unblocking a pending Accept.
	Close() error

	// Addr returns the bound address, useful when listening on
	// port 0.
	Addr() net.Addr
}

// Conn is one accepted client connection. Writes are the only data
// path; the stream layer never reads application bytes from clients.
type Conn interface {
	// Write sends bytes, honoring a previously set write deadline.
	Write(p []byte) (int, error)

	// SetWriteDeadline bounds subsequent writes so one stalled client
	// cannot hold up a fan-out pass.
	SetWriteDeadline(t time.Time) error

	// Alive probes the connection for a peer close without consuming
	// pending data. A false result is definitive; true may mean
	// "open" or "cannot tell on this platform".
	Alive() bool

	// RemoteAddr returns the peer address.
	RemoteAddr() net.Addr

	// Close closes the connection.
	Close() error
}
