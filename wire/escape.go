// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"strings"
)

// Escape returns s with JSON string escaping applied: quote,
// backslash, the short escapes \b \f \n \r \t, and uppercase \u00XX
// for remaining control bytes below 0x20. Multi-byte UTF-8 sequences
// pass through untouched.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&b, `\u%04X`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

// Hex8 renders v as two uppercase hex digits.
func Hex8(v uint8) string {
	return fmt.Sprintf("%02X", v)
}

// Hex16 renders v as four uppercase hex digits.
func Hex16(v uint16) string {
	return fmt.Sprintf("%04X", v)
}
