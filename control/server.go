// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/statescope/statescope/lib/codec"
	"github.com/statescope/statescope/lib/netutil"
)

const (
	// maxMessageBytes caps one request or response envelope. Control
	// messages are tiny; anything near this limit is malformed.
	maxMessageBytes = 1 << 20

	// requestTimeout bounds one connection's read-handle-respond
	// cycle.
	requestTimeout = 10 * time.Second
)

// Handler services one control action. The payload is the request's
// raw CBOR payload, which the handler decodes into its own request
// type. The returned value is encoded as the response data.
type Handler func(ctx context.Context, payload codec.RawMessage) (any, error)

type request struct {
	Action  string           `cbor:"action"`
	Payload codec.RawMessage `cbor:"payload,omitempty"`
}

type response struct {
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

// Server answers control requests on a unix socket. Register every
// handler before calling Serve; Handle is not safe to call once the
// server is serving.
type Server struct {
	path     string
	logger   *slog.Logger
	handlers map[string]Handler
}

// NewServer returns a server that will listen at the given socket
// path.
func NewServer(path string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		path:     path,
		logger:   logger,
		handlers: make(map[string]Handler),
	}
}

// Handle registers a handler for an action. Panics on a duplicate
// registration; that is a wiring bug, not a runtime condition.
func (s *Server) Handle(action string, handler Handler) {
	if _, exists := s.handlers[action]; exists {
		panic(fmt.Sprintf("control: duplicate handler for action %q", action))
	}
	s.handlers[action] = handler
}

// Serve listens on the socket path and dispatches requests until ctx
// is cancelled. A stale socket file from an earlier run is removed
// before binding. Returns nil on cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale control socket: %w", err)
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("binding control socket: %w", err)
	}
	defer listener.Close()
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("restricting control socket: %w", err)
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("control socket listening", "path", s.path)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || netutil.IsExpectedClose(err) {
				return nil
			}
			return fmt.Errorf("control accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout))

	var req request
	if err := codec.NewDecoder(io.LimitReader(conn, maxMessageBytes)).Decode(&req); err != nil {
		s.logger.Warn("control request decode failed", "error", err)
		return
	}

	var resp response
	if handler, ok := s.handlers[req.Action]; ok {
		data, err := handler(ctx, req.Payload)
		switch {
		case err != nil:
			resp.Error = err.Error()
		case data == nil:
			resp.OK = true
		default:
			if encoded, err := codec.Marshal(data); err != nil {
				resp.Error = fmt.Sprintf("encoding reply: %v", err)
			} else {
				resp.OK = true
				resp.Data = encoded
			}
		}
	} else {
		resp.Error = fmt.Sprintf("unknown action %q", req.Action)
	}

	if err := codec.NewEncoder(conn).Encode(resp); err != nil {
		s.logger.Warn("control response write failed", "action", req.Action, "error", err)
	}
}
