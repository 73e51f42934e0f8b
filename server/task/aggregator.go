// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"log/slog"

	a2a "github.com/go-a2a/runtime"
)

// Aggregator folds an event stream into the task snapshot through a Manager
// and exposes the consumption patterns the request handler needs: blocking
// until the final event, streaming with persistence as a side effect, and
// breaking on interrupted states with background continuation. When a push
// sender is configured, every persisted state change is delivered to the
// task's registered webhooks.
type Aggregator struct {
	manager     *Manager
	pushSender  PushSender
	pushOnFinal bool
	bufferSize  int
	logger      *slog.Logger
}

// AggregatorConfig holds configuration for creating an Aggregator.
type AggregatorConfig struct {
	Manager *Manager

	// PushSender, when non-nil, receives the task snapshot after every
	// persisted state change.
	PushSender PushSender

	// PushOnFinalOnly restricts push deliveries to terminal and
	// interrupted states.
	PushOnFinalOnly bool

	// BufferSize sizes the output channel of ConsumeAndEmit. Non-positive
	// selects a default of 100.
	BufferSize int

	Logger *slog.Logger
}

// NewAggregator creates an Aggregator bound to the manager's task.
func NewAggregator(config AggregatorConfig) (*Aggregator, error) {
	if config.Manager == nil {
		return nil, fmt.Errorf("task manager cannot be nil")
	}

	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = 100
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Aggregator{
		manager:     config.Manager,
		pushSender:  config.PushSender,
		pushOnFinal: config.PushOnFinalOnly,
		bufferSize:  bufferSize,
		logger:      logger,
	}, nil
}

// Manager returns the underlying task manager.
func (a *Aggregator) Manager() *Manager { return a.manager }

// ConsumeAll drains the event stream until the final event, persisting every
// state change. The result is the final agent message when the agent replied
// with a bare message, otherwise the task snapshot after the last event.
// A closed channel without a final event yields the current snapshot, so a
// consumer severed mid-stream still observes consistent state.
func (a *Aggregator) ConsumeAll(ctx context.Context, events <-chan a2a.Event) (a2a.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case e, ok := <-events:
			if !ok {
				return a.manager.Task(ctx)
			}

			if msg, isMsg := e.(*a2a.Message); isMsg {
				// A bare agent message is itself the final result; there is
				// no task state to persist.
				return msg, nil
			}

			if err := a.Process(ctx, e); err != nil {
				return nil, err
			}

			if a2a.Final(e) {
				return a.manager.Task(ctx)
			}
		}
	}
}

// ConsumeAndEmit persists each event and forwards it on the returned
// channel, which closes after the final event or when the input closes. Used
// by the streaming and resubscription paths: consumers observe the exact
// event sequence while the store tracks the folded state.
func (a *Aggregator) ConsumeAndEmit(ctx context.Context, events <-chan a2a.Event) <-chan a2a.Event {
	out := make(chan a2a.Event, a.bufferSize)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}

				if err := a.Process(ctx, e); err != nil {
					a.logger.ErrorContext(ctx, "failed to process event",
						"task_id", a.manager.TaskID(), "kind", e.EventKind(), "error", err)
					return
				}

				select {
				case out <- e:
				case <-ctx.Done():
					return
				}

				if a2a.Final(e) {
					return
				}
			}
		}
	}()

	return out
}

// ConsumeAndBreakOnInterrupt persists events until the task reaches an
// interrupted state or finishes. On interrupt it returns the snapshot
// immediately and keeps consuming in the background so the store stays
// current while the caller waits for more input.
func (a *Aggregator) ConsumeAndBreakOnInterrupt(ctx context.Context, events <-chan a2a.Event) (a2a.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case e, ok := <-events:
			if !ok {
				return a.manager.Task(ctx)
			}

			if msg, isMsg := e.(*a2a.Message); isMsg {
				return msg, nil
			}

			if err := a.Process(ctx, e); err != nil {
				return nil, err
			}

			if interrupted(e) {
				task, err := a.manager.Task(ctx)
				if err != nil {
					return nil, err
				}
				a.ContinueConsuming(context.WithoutCancel(ctx), events)
				return task, nil
			}

			if a2a.Final(e) {
				return a.manager.Task(ctx)
			}
		}
	}
}

// ContinueConsuming resumes persistence of the event stream in a background
// goroutine until the final event. Processing errors are logged; there is no
// caller left to return them to.
func (a *Aggregator) ContinueConsuming(ctx context.Context, events <-chan a2a.Event) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				if err := a.Process(ctx, e); err != nil {
					a.logger.ErrorContext(ctx, "failed to process event in background",
						"task_id", a.manager.TaskID(), "kind", e.EventKind(), "error", err)
					return
				}
				if a2a.Final(e) {
					return
				}
			}
		}
	}()
}

// Process folds one event through the manager and triggers push delivery
// for persisted state changes. The consumption helpers above drive it; it is
// exposed for callers that run their own receive loop.
func (a *Aggregator) Process(ctx context.Context, e a2a.Event) error {
	if err := a.manager.Process(ctx, e); err != nil {
		return err
	}

	if a.pushSender == nil || !statusChanged(e) {
		return nil
	}
	if a.pushOnFinal && !finalState(e) {
		return nil
	}

	task, err := a.manager.Task(ctx)
	if err != nil {
		return fmt.Errorf("failed to load task for push notification: %w", err)
	}
	if err := a.pushSender.Notify(ctx, task); err != nil {
		// Push delivery is best effort; the fold already succeeded.
		a.logger.WarnContext(ctx, "failed to queue push notification",
			"task_id", a.manager.TaskID(), "error", err)
	}
	return nil
}

// statusChanged reports whether the event altered the task status.
func statusChanged(e a2a.Event) bool {
	switch e.(type) {
	case *a2a.Task, *a2a.TaskStatusUpdateEvent:
		return true
	default:
		return false
	}
}

// finalState reports whether the event left the task in a terminal or
// interrupted state.
func finalState(e a2a.Event) bool {
	switch event := e.(type) {
	case *a2a.Task:
		return event.Status.State.Terminal() || event.Status.State.Interrupted()
	case *a2a.TaskStatusUpdateEvent:
		return event.Status.State.Terminal() || event.Status.State.Interrupted()
	default:
		return false
	}
}

// interrupted reports whether the event moved the task into a state that
// pauses execution pending external input.
func interrupted(e a2a.Event) bool {
	switch event := e.(type) {
	case *a2a.TaskStatusUpdateEvent:
		return event.Status.State.Interrupted()
	case *a2a.Task:
		return event.Status.State.Interrupted()
	default:
		return false
	}
}
