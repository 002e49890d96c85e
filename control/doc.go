// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// Package control implements the local management surface for a
// running stream daemon: a unix domain socket speaking CBOR request
// and response envelopes, one request per connection.
//
// A request names an action and carries an optional payload; the
// response is {ok, error, data}. Handlers are registered by action
// name before serving. The Client opens a fresh connection per call
// and half-closes its write side so the server sees a complete
// request without framing bytes.
//
// The control socket is how operators and the statescope CLI adjust
// a live daemon: toggling scheduled broadcasts, changing the
// interval or verbosity tier, injecting an event record, and reading
// status counters. It is a local-only surface; the socket file is
// created mode 0600.
package control
