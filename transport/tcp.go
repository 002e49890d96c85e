// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"
)

// Listen binds a TCP listener on address ("host:port") with
// SO_REUSEADDR set, so a restarted server can rebind while old
// connections linger in TIME_WAIT.
func Listen(address string) (Listener, error) {
	lc := net.ListenConfig{Control: reuseAddr}
	ln, err := lc.Listen(context.Background(), "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", address, err)
	}
	return &tcpListener{ln: ln.(*net.TCPListener)}, nil
}

type tcpListener struct {
	ln *net.TCPListener
}

func (l *tcpListener) Accept(timeout time.Duration) (Conn, error) {
	if err := l.ln.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	conn, err := l.ln.AcceptTCP()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrAcceptTimeout
		}
		return nil, err
	}
	return newTCPConn(conn), nil
}

func (l *tcpListener) Close() error {
	return l.ln.Close()
}

func (l *tcpListener) Addr() net.Addr {
	return l.ln.Addr()
}

type tcpConn struct {
	conn *net.TCPConn

	// raw drives the liveness probe. Nil when the runtime cannot
	// expose the descriptor; Alive then always reports true.
	raw syscall.RawConn
}

func newTCPConn(conn *net.TCPConn) *tcpConn {
	raw, err := conn.SyscallConn()
	if err != nil {
		raw = nil
	}
	return &tcpConn{conn: conn, raw: raw}
}

func (c *tcpConn) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

func (c *tcpConn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

func (c *tcpConn) Alive() bool {
	return c.alive()
}

func (c *tcpConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}
