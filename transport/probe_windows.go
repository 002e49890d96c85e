// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package transport

// alive always reports true on Windows. The runtime manages sockets
// through overlapped I/O and offers no way to issue a non-blocking
// MSG_PEEK recv without racing its own completion handling, so the
// probe cannot distinguish idle from half-closed here. Dead peers are
// detected by the next failed write instead.
func (c *tcpConn) alive() bool {
	return true
}
