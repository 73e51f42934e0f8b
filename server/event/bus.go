// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package event provides the per-task event bus and the registry that maps
// in-flight task IDs to their live buses.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	a2a "github.com/go-a2a/runtime"
	"github.com/go-a2a/runtime/internal/metrics"
)

// DefaultCapacity is the default maximum number of events a bus retains.
const DefaultCapacity = 1024

// Bus delivery errors.
var (
	// ErrBusFinished is returned by Publish after Finished has been called.
	// Publishing past the terminal event indicates an executor bug.
	ErrBusFinished = errors.New("event bus is finished")

	// ErrBusFull is returned when the backlog capacity is exhausted.
	ErrBusFull = errors.New("event bus backlog is full")
)

// Subscription is one consumer's attachment to a Bus. Events arrive on C in
// publish order, starting with a replay of everything published before the
// subscription was taken. C is closed after the bus finishes.
type Subscription struct {
	// C carries the event sequence.
	C <-chan a2a.Event

	id int
	ch chan a2a.Event
}

// Bus is the per-task-attempt event channel: a single producer (the agent
// executor) and any number of consumers, including consumers that attach
// mid-stream. A bounded in-memory backlog lets late subscribers replay the
// complete sequence from the start. The bus holds no knowledge of task
// state; it only delivers.
type Bus struct {
	mu       sync.Mutex
	subs     map[int]*Subscription
	backlog  []a2a.Event
	capacity int
	finished bool
	sawFinal bool
	nextID   int
	done     chan struct{}
}

// New creates a Bus with the given backlog capacity. Non-positive capacity
// selects DefaultCapacity.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		subs:     make(map[int]*Subscription),
		capacity: capacity,
		done:     make(chan struct{}),
	}
}

// Publish delivers the event to every current subscriber in publish order
// and appends it to the backlog for subscribers attaching later. At most one
// final event passes through a bus: publishing after Finished, or after a
// final event has been published, returns ErrBusFinished — it is never
// silently dropped.
func (b *Bus) Publish(ctx context.Context, e a2a.Event) error {
	if e == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished || b.sawFinal {
		return ErrBusFinished
	}
	if len(b.backlog) >= b.capacity {
		return ErrBusFull
	}

	b.backlog = append(b.backlog, e)
	if a2a.Final(e) {
		b.sawFinal = true
	}
	metrics.EventsPublished.Inc()

	// Every subscriber channel is buffered to the backlog capacity, and the
	// backlog bound above caps the total events a subscriber can ever
	// receive, so these sends cannot block.
	for _, sub := range b.subs {
		sub.ch <- e
	}
	return nil
}

// Subscribe attaches a new consumer. The returned subscription first replays
// the backlog, then receives live events. Subscribing to a finished bus
// yields the backlog followed immediately by channel close.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan a2a.Event, b.capacity)
	sub := &Subscription{C: ch, id: b.nextID, ch: ch}
	b.nextID++

	for _, e := range b.backlog {
		ch <- e
	}

	if b.finished {
		close(ch)
		return sub
	}

	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe detaches the subscription and closes its channel. It is a
// no-op if the subscription is already detached.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
}

// Finished signals that no more events will be published. It is idempotent.
// All subscriber channels are closed after any queued events drain.
func (b *Bus) Finished() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.finished = true
	close(b.done)

	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// IsFinished reports whether Finished has been called.
func (b *Bus) IsFinished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// Done returns a channel closed when the bus finishes.
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

// Len returns the number of events published so far.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.backlog)
}
