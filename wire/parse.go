// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parsed is a stream record decoded back into its tagged fields.
// Consumers use this; the server side only ever formats.
type Parsed struct {
	Src string
	Cat string
	Sec string
	Fld string
	Val string

	// Aux holds auxiliary pairs beyond the five fixed tags.
	Aux map[string]string

	// TS is milliseconds since the Unix epoch. HasTS reports whether
	// the record carried a timestamp; snapshot records do not.
	TS    int64
	HasTS bool
}

// ParseRecord decodes one stream line. The trailing CRLF or LF may be
// present or already stripped. Telnet preamble bytes must be removed
// before calling.
func ParseRecord(line string) (*Parsed, error) {
	line = strings.TrimRight(line, "\r\n")

	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}

	p := &Parsed{}
	for _, tag := range []struct {
		key  string
		dest *string
	}{
		{"src", &p.Src},
		{"cat", &p.Cat},
		{"sec", &p.Sec},
		{"fld", &p.Fld},
		{"val", &p.Val},
	} {
		value, ok := raw[tag.key]
		if !ok {
			return nil, fmt.Errorf("record missing %q field", tag.key)
		}
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("record field %q is %T, want string", tag.key, value)
		}
		*tag.dest = s
		delete(raw, tag.key)
	}

	if value, ok := raw["ts"]; ok {
		f, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("record field \"ts\" is %T, want number", value)
		}
		p.TS = int64(f)
		p.HasTS = true
		delete(raw, "ts")
	}

	if len(raw) > 0 {
		p.Aux = make(map[string]string, len(raw))
		for k, value := range raw {
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("auxiliary field %q is %T, want string", k, value)
			}
			p.Aux[k] = s
		}
	}
	return p, nil
}
