// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package transport

import (
	"testing"
	"time"
)

// waitNotAlive polls conn until the probe reports dead or the
// deadline passes.
func waitNotAlive(t *testing.T, conn Conn) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !conn.Alive() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("probe still reports alive after peer close")
}

func TestAliveOpenIdle(t *testing.T) {
	t.Parallel()

	conn, _ := acceptPair(t)
	for range 3 {
		if !conn.Alive() {
			t.Fatal("Alive() = false for an open idle connection")
		}
	}
}

func TestAliveAfterPeerClose(t *testing.T) {
	t.Parallel()

	conn, client := acceptPair(t)
	if err := client.Close(); err != nil {
		t.Fatalf("client close: %v", err)
	}
	waitNotAlive(t, conn)
}

func TestAliveLeavesPendingDataUnread(t *testing.T) {
	t.Parallel()

	conn, client := acceptPair(t)
	if _, err := client.Write([]byte("stray input\r\n")); err != nil {
		t.Fatalf("client write: %v", err)
	}

	// Give loopback delivery a moment, then probe repeatedly: the
	// peek must not consume the buffered bytes, so every probe keeps
	// seeing an open connection with data pending.
	time.Sleep(20 * time.Millisecond)
	for range 5 {
		if !conn.Alive() {
			t.Fatal("Alive() = false with pending unread data")
		}
	}
}

func TestAliveAfterLocalClose(t *testing.T) {
	t.Parallel()

	conn, _ := acceptPair(t)
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if conn.Alive() {
		t.Error("Alive() = true after local close")
	}
}
