// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package wire

// Telnet protocol bytes. The server emits the negotiation preamble;
// consumers that want clean record lines strip any IAC sequences a
// proxy or terminal may inject back into the stream.
const (
	TelnetIAC  = 0xFF // interpret as command
	TelnetWILL = 0xFB
	TelnetWONT = 0xFC
	TelnetDO   = 0xFD
	TelnetDONT = 0xFE

	TelnetEcho            = 0x01
	TelnetSuppressGoAhead = 0x03
)

// Preamble returns the bytes sent once at the head of every
// connection: WILL ECHO and WILL SUPPRESS-GO-AHEAD. They tell a
// terminal client not to echo locally or wait for turn-taking. The
// server never parses negotiation responses; any bytes a client sends
// back are ignored by the stream layer. Returns a fresh slice each
// call.
func Preamble() []byte {
	return []byte{
		TelnetIAC, TelnetWILL, TelnetEcho,
		TelnetIAC, TelnetWILL, TelnetSuppressGoAhead,
	}
}
