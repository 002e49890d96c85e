// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies network errors for the accept and send
// paths, so normal disconnects are logged quietly and real faults are
// not.
package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsExpectedClose reports whether err is a normal connection
// termination: EOF, a closed handle, a broken pipe, or a reset. Stream
// clients connect and vanish at will; when one does, the in-flight
// read or write on our side fails with one of these. They are part of
// normal operation and must never be surfaced as faults.
func IsExpectedClose(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}
