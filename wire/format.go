// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"sort"
	"strconv"
	"strings"

	"github.com/statescope/statescope/lib/clock"
)

// Formatter builds Records tagged with a fixed src domain. It owns
// the key order and escaping rules; callers supply only the tag
// values. One Formatter serves all connections of a server and is
// safe for concurrent use.
type Formatter struct {
	domain  string
	version string
	clk     clock.Clock
}

// NewFormatter returns a Formatter stamping records with the given
// src domain. version appears in hello records; clk supplies ts
// values for stamped records.
func NewFormatter(domain, version string, clk clock.Clock) *Formatter {
	return &Formatter{domain: domain, version: version, clk: clk}
}

// Domain returns the src tag this formatter stamps on every record.
func (f *Formatter) Domain() string {
	return f.domain
}

// Line formats an unstamped record, the form used for snapshot
// lines. Auxiliary pairs are emitted after val in sorted key order.
func (f *Formatter) Line(cat, sec, fld, val string, aux map[string]string) Record {
	var b strings.Builder
	f.writeHead(&b, cat, sec, fld, val, aux)
	b.WriteByte('}')
	return Record(b.String())
}

// Stamped formats a record ending in a ts field, milliseconds since
// the Unix epoch. Updates and event records use this form.
func (f *Formatter) Stamped(cat, sec, fld, val string, aux map[string]string) Record {
	var b strings.Builder
	f.writeHead(&b, cat, sec, fld, val, aux)
	b.WriteString(`,"ts":`)
	b.WriteString(strconv.FormatInt(f.clk.Now().UnixMilli(), 10))
	b.WriteByte('}')
	return Record(b.String())
}

// Hello formats the connection greeting: the service banner plus the
// protocol version, stamped.
func (f *Formatter) Hello(serviceName string) Record {
	return f.Stamped("sys", "conn", "hello", serviceName, map[string]string{"ver": f.version})
}

// Goodbye formats the shutdown farewell sent to clients still
// connected when the server stops.
func (f *Formatter) Goodbye() Record {
	return f.Stamped("sys", "conn", "goodbye", "server stopping", nil)
}

func (f *Formatter) writeHead(b *strings.Builder, cat, sec, fld, val string, aux map[string]string) {
	b.Grow(64 + len(val))
	b.WriteString(`{"src":"`)
	b.WriteString(Escape(f.domain))
	b.WriteString(`","cat":"`)
	b.WriteString(Escape(cat))
	b.WriteString(`","sec":"`)
	b.WriteString(Escape(sec))
	b.WriteString(`","fld":"`)
	b.WriteString(Escape(fld))
	b.WriteString(`","val":"`)
	b.WriteString(Escape(val))
	b.WriteByte('"')
	if len(aux) > 0 {
		keys := make([]string, 0, len(aux))
		for k := range aux {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(`,"`)
			b.WriteString(Escape(k))
			b.WriteString(`":"`)
			b.WriteString(Escape(aux[k]))
			b.WriteByte('"')
		}
	}
}
