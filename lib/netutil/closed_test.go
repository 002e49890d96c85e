// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
)

func TestIsExpectedClose(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("reading line: %w", io.EOF), true},
		{"net closed", net.ErrClosed, true},
		{"wrapped net closed", fmt.Errorf("accept: %w", net.ErrClosed), true},
		{"epipe", syscall.EPIPE, true},
		{"econnreset", &net.OpError{Op: "write", Err: syscall.ECONNRESET}, true},
		{"econnrefused", syscall.ECONNREFUSED, false},
		{"plain error", errors.New("provider unavailable"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsExpectedClose(tc.err); got != tc.want {
				t.Errorf("IsExpectedClose(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
