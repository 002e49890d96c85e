// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the StateScope stream format: one JSON object
// per line, CRLF-terminated, UTF-8 throughout.
//
// Every record carries the same leading fields in a fixed order:
//
//	{"src":"sim","cat":"cpu","sec":"regs","fld":"pc","val":"C600","ts":1767225600000}
//
// src names the producing system, cat the subsystem, sec the section
// within it, fld the individual field, and val the field's value. All
// five are strings; numeric values are rendered as text (registers and
// addresses as uppercase hex, counters as decimal) so consumers never
// need per-field type knowledge. Optional auxiliary pairs follow val
// in sorted key order. Streamed records end with ts, milliseconds
// since the Unix epoch as a bare integer; snapshot records omit it.
//
// Serialization is deliberately hand-rolled rather than delegated to
// encoding/json: the format fixes key order, uses the short escapes
// \b and \f, and renders control bytes as uppercase \u00XX, none of
// which encoding/json produces. The parse side has no such
// constraints and uses encoding/json.
//
// A connection opens with a six-byte telnet preamble (see Preamble)
// so terminal clients suppress local echo, then a hello record, then
// a full snapshot, then updates until disconnect. Line termination is
// normalized by Record.Terminated: exactly one CRLF per record on the
// wire, whatever the formatted text ended with.
package wire
