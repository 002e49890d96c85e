// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/statescope/statescope/lib/clock"
	"github.com/statescope/statescope/transport"
	"github.com/statescope/statescope/wire"
)

const (
	// acceptPollInterval bounds each accept wait. It is the shutdown
	// latency ceiling for the accept loop and the reaper's cadence on
	// an idle listener.
	acceptPollInterval = 100 * time.Millisecond

	// writeTimeout bounds one broadcast batch to one client. A client
	// that cannot drain a batch this fast is dropped rather than
	// allowed to stall the pass.
	writeTimeout = time.Second

	// welcomeTimeout bounds the hello-plus-snapshot sequence, which
	// is much larger than a routine batch.
	welcomeTimeout = 5 * time.Second
)

// Options configures a Server. Address, Provider, and Formatter are
// required; the rest default sensibly.
type Options struct {
	// Address is the "host:port" to bind. Use port 0 to let the
	// kernel pick, then read Addr after Start.
	Address string

	// Provider supplies hello text, snapshots, and updates.
	Provider StateProvider

	// Formatter stamps outbound records. Sharing one instance with
	// the provider keeps the src domain and clock consistent across
	// snapshot and update records.
	Formatter *wire.Formatter

	// Config holds the scheduler settings. Nil means defaults:
	// DefaultInterval, standard tier, enabled.
	Config *BroadcastConfig

	// Clock drives the scheduler. Nil means the system clock.
	Clock clock.Clock

	// Logger receives lifecycle and drop events. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Server is the fan-out engine plus its accept and scheduler loops.
// Construct with New, run with Start, halt with Stop. A stopped
// server can be started again.
type Server struct {
	address   string
	provider  StateProvider
	formatter *wire.Formatter
	config    *BroadcastConfig
	clock     clock.Clock
	logger    *slog.Logger

	acceptPoll     time.Duration
	writeTimeout   time.Duration
	welcomeTimeout time.Duration

	registry *registry

	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	listener transport.Listener
	wg       sync.WaitGroup

	ticks      atomic.Uint64
	broadcasts atomic.Uint64
	records    atomic.Uint64
	dropped    atomic.Uint64
}

// New validates opts and returns an unstarted Server.
func New(opts Options) (*Server, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("stream: Address is required")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("stream: Provider is required")
	}
	if opts.Formatter == nil {
		return nil, fmt.Errorf("stream: Formatter is required")
	}
	config := opts.Config
	if config == nil {
		var err error
		config, err = NewBroadcastConfig(DefaultInterval, wire.TierStandard, true)
		if err != nil {
			return nil, err
		}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		address:        opts.Address,
		provider:       opts.Provider,
		formatter:      opts.Formatter,
		config:         config,
		clock:          clk,
		logger:         logger,
		acceptPoll:     acceptPollInterval,
		writeTimeout:   writeTimeout,
		welcomeTimeout: welcomeTimeout,
		registry:       newRegistry(),
	}, nil
}

// Start binds the listener and spawns the accept and scheduler
// loops. Calling Start on a running server is a no-op. A bind
// failure leaves nothing running and nothing to clean up.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	listener, err := transport.Listen(s.address)
	if err != nil {
		return fmt.Errorf("starting stream server: %w", err)
	}

	s.listener = listener
	s.stop = make(chan struct{})
	s.running = true
	s.wg.Add(2)
	go s.acceptLoop(s.stop, listener)
	go s.schedulerLoop(s.stop)

	s.logger.Info("stream server listening", "address", listener.Addr().String())
	return nil
}

// Stop signals both loops, waits for them to exit, then sends each
// remaining client a goodbye record and closes it. When Stop returns
// the listener is closed, the loops have exited, and the registry is
// empty; no further client activity occurs. Stopping a stopped
// server is a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}

	close(s.stop)
	s.listener.Close()
	s.wg.Wait()

	goodbye := terminated([]wire.Record{s.formatter.Goodbye()})
	for _, c := range s.registry.clear() {
		// Best effort; the client may already be gone.
		c.send(goodbye, s.writeTimeout)
		c.close()
	}

	s.running = false
	s.listener = nil
	s.logger.Info("stream server stopped")
	return nil
}

// Addr returns the bound address, or nil when the server is not
// running.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ClientCount returns the number of registered clients.
func (s *Server) ClientCount() int {
	return s.registry.count()
}

// Config returns the server's broadcast configuration for control
// surfaces to read and mutate.
func (s *Server) Config() *BroadcastConfig {
	return s.config
}

// Formatter returns the formatter stamping this server's records.
func (s *Server) Formatter() *wire.Formatter {
	return s.formatter
}

// Stats is a snapshot of the server's counters.
type Stats struct {
	// Ticks counts scheduler wakes, including idle and disabled ones.
	Ticks uint64

	// Broadcasts counts fan-out passes that had records to send.
	Broadcasts uint64

	// Records counts records delivered, summed across clients.
	Records uint64

	// DroppedClients counts clients pruned for send failures or
	// failed liveness probes.
	DroppedClients uint64
}

// Stats returns a snapshot of the server's counters.
func (s *Server) Stats() Stats {
	return Stats{
		Ticks:          s.ticks.Load(),
		Broadcasts:     s.broadcasts.Load(),
		Records:        s.records.Load(),
		DroppedClients: s.dropped.Load(),
	}
}

// drop removes c from the registry and closes it. The close waits
// for any in-flight send to finish, so when drop returns no further
// bytes will reach the client. Only the path that wins the removal
// logs and counts it.
func (s *Server) drop(c *client, reason string) {
	if !s.registry.unregister(c) {
		return
	}
	c.close()
	s.dropped.Add(1)
	s.logger.Info("client dropped", "client", c.name, "reason", reason, "clients", s.registry.count())
}
