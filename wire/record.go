// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package wire

// Record is one formatted stream line without its terminator. Records
// are immutable once formatted and carry no identity beyond their
// serialized text.
type Record string

// Terminated returns the record's wire bytes ending in exactly one
// CRLF. A record already ending in CRLF is passed through, a bare
// trailing LF gains a CR before it, and anything else gains the full
// two-byte terminator.
func (r Record) Terminated() []byte {
	s := string(r)
	n := len(s)
	if n == 0 || s[n-1] != '\n' {
		return append([]byte(s), '\r', '\n')
	}
	if n >= 2 && s[n-2] == '\r' {
		return []byte(s)
	}
	out := make([]byte, 0, n+1)
	out = append(out, s[:n-1]...)
	return append(out, '\r', '\n')
}
