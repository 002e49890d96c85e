// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR configuration for the
// control socket protocol.
//
// StateScope uses two serialization formats with a clear boundary:
//
//   - Newline-delimited JSON for the stream wire format that TCP
//     clients consume (see the wire package, which owns that contract
//     byte for byte).
//   - CBOR for the control plane: request/response traffic on the
//     unix control socket.
//
// This package centralizes the CBOR encoder and decoder modes so every
// control-plane participant encodes identically. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. The same logical data
// always produces identical bytes, which keeps captured control
// traffic diffable.
//
// Buffer-oriented use:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Stream-oriented use (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
