// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"errors"

	"github.com/statescope/statescope/lib/netutil"
	"github.com/statescope/statescope/transport"
	"github.com/statescope/statescope/wire"
)

// acceptLoop waits for connections in bounded polls. An empty poll is
// the reaper's cue: with no connection to greet, probe the registry
// for silently departed clients. Stop latency is bounded by the poll
// interval, and in practice far lower because closing the listener
// fails the pending wait immediately.
func (s *Server) acceptLoop(stop <-chan struct{}, listener transport.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept(s.acceptPoll)
		switch {
		case err == nil:
			s.welcome(conn)
		case errors.Is(err, transport.ErrAcceptTimeout):
			s.reap()
		default:
			select {
			case <-stop:
				return
			default:
			}
			if netutil.IsExpectedClose(err) {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		select {
		case <-stop:
			return
		default:
		}
	}
}

// welcome runs the connection handshake: telnet preamble, hello
// record, full snapshot, then registration. Registration comes last
// so concurrent broadcasts cannot interleave with the welcome
// sequence; until the client is registered, only this goroutine
// writes to it.
func (s *Server) welcome(conn transport.Conn) {
	c := newClient(conn)

	if err := c.sendRaw(wire.Preamble(), s.welcomeTimeout); err != nil {
		c.close()
		return
	}

	batch := []wire.Record{s.formatter.Hello(s.provider.HelloText())}
	snapshot, err := s.provider.FullSnapshot()
	if err != nil {
		// The client still gets its hello and will receive updates;
		// it just starts without baseline state.
		s.logger.Warn("snapshot unavailable for new client", "client", c.name, "error", err)
	} else {
		batch = append(batch, snapshot...)
	}

	if err := c.send(terminated(batch), s.welcomeTimeout); err != nil {
		if !netutil.IsExpectedClose(err) {
			s.logger.Debug("welcome failed", "client", c.name, "error", err)
		}
		c.close()
		return
	}

	s.registry.register(c)
	s.logger.Info("client connected", "client", c.name, "clients", s.registry.count())
}

// reap probes every registered client and drops the ones whose peers
// have gone away. This catches clients that disconnect while no
// broadcast traffic is flowing; clients that die under traffic are
// caught sooner by their failed sends.
func (s *Server) reap() {
	for _, c := range s.registry.snapshot() {
		if !c.alive() {
			s.drop(c, "liveness probe")
		}
	}
}
