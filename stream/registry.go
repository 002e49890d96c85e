// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import "sync"

// registry is the set of clients currently believed writable.
// Presence means "send to this client"; absence means "do not send".
// All methods are safe to call concurrently from the accept, reaper,
// and broadcast paths.
type registry struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func newRegistry() *registry {
	return &registry{clients: make(map[*client]struct{})}
}

func (r *registry) register(c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

// unregister removes c and reports whether it was present, so a
// client raced to removal by two paths is only dropped once.
func (r *registry) unregister(c *client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; !ok {
		return false
	}
	delete(r.clients, c)
	return true
}

// snapshot returns a stable copy of the current membership. Callers
// iterate the copy without the registry lock, so a send to one client
// never blocks registration or removal of another.
func (r *registry) snapshot() []*client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// clear empties the registry and returns the removed clients.
func (r *registry) clear() []*client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	r.clients = make(map[*client]struct{})
	return out
}
