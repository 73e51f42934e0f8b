// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"sync"

	"github.com/go-a2a/runtime/internal/metrics"
)

// Registry maps active task IDs to their live buses. An entry exists for the
// duration of exactly one executor invocation: created on first dispatch,
// removed once the bus finishes. Resubscription attaches to the mapped bus
// instead of starting a duplicate execution.
type Registry struct {
	mu       sync.Mutex
	buses    map[string]*Bus
	capacity int
}

// NewRegistry creates a Registry whose buses use the given backlog capacity.
// Non-positive capacity selects DefaultCapacity.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		buses:    make(map[string]*Bus),
		capacity: capacity,
	}
}

// CreateOrGet returns the live bus for the task, creating one atomically if
// absent. The second return reports whether the bus already existed.
func (r *Registry) CreateOrGet(taskID string) (*Bus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bus, ok := r.buses[taskID]; ok {
		return bus, true
	}

	bus := New(r.capacity)
	r.buses[taskID] = bus
	metrics.ActiveBuses.Inc()
	return bus, false
}

// Get returns the live bus for the task, or nil if none is registered.
func (r *Registry) Get(taskID string) *Bus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buses[taskID]
}

// Deregister removes the mapping for the task. The bus itself is left to its
// subscribers; callers finish it before deregistering.
func (r *Registry) Deregister(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.buses[taskID]; !ok {
		return
	}
	delete(r.buses, taskID)
	metrics.ActiveBuses.Dec()
}

// Count returns the number of registered buses.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buses)
}

// CloseAll finishes and removes every registered bus. Used on server
// shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for taskID, bus := range r.buses {
		bus.Finished()
		delete(r.buses, taskID)
		metrics.ActiveBuses.Dec()
	}
}
