// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "testing"

func TestTerminated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{"no terminator", `{"a":"b"}`, "{\"a\":\"b\"}\r\n"},
		{"bare LF", "{\"a\":\"b\"}\n", "{\"a\":\"b\"}\r\n"},
		{"already CRLF", "{\"a\":\"b\"}\r\n", "{\"a\":\"b\"}\r\n"},
		{"empty", "", "\r\n"},
		{"lone LF", "\n", "\r\n"},
		{"trailing CR only", "x\r", "x\r\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := string(tt.record.Terminated()); got != tt.want {
				t.Errorf("Terminated() = %q, want %q", got, tt.want)
			}
		})
	}
}
