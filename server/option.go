// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	a2a "github.com/go-a2a/runtime"
	"github.com/go-a2a/runtime/server/execution"
	"github.com/go-a2a/runtime/server/task"
)

// Option represents an option for configuring the [RequestHandler].
type Option func(*RequestHandler)

// WithTaskStore sets the task store. Defaults to an in-memory store.
func WithTaskStore(store task.Store) Option {
	return func(h *RequestHandler) {
		h.store = store
	}
}

// WithPushConfigStore sets the push notification config store. Defaults to
// an in-memory store.
func WithPushConfigStore(store task.PushConfigStore) Option {
	return func(h *RequestHandler) {
		h.pushStore = store
	}
}

// WithPushSender sets the push notification sender. Defaults to an
// HTTP sender over the configured push config store.
func WithPushSender(sender task.PushSender) Option {
	return func(h *RequestHandler) {
		h.pushSender = sender
	}
}

// WithContextBuilder sets the builder that assembles the RequestContext
// handed to the executor.
func WithContextBuilder(builder execution.ContextBuilder) Option {
	return func(h *RequestHandler) {
		h.builder = builder
	}
}

// WithCancelTimeout bounds how long CancelTask waits for the executor to
// publish the terminal canceled status before the handler synthesizes it.
func WithCancelTimeout(timeout time.Duration) Option {
	return func(h *RequestHandler) {
		h.cancelTimeout = timeout
	}
}

// WithPushOnFinalOnly restricts push notifications to terminal and
// interrupted states. By default every status change is delivered.
func WithPushOnFinalOnly(finalOnly bool) Option {
	return func(h *RequestHandler) {
		h.pushOnFinalOnly = finalOnly
	}
}

// WithBusCapacity sets the per-task event backlog capacity.
func WithBusCapacity(capacity int) Option {
	return func(h *RequestHandler) {
		h.busCapacity = capacity
	}
}

// WithExtendedAgentCard sets the agent card served to authenticated callers.
func WithExtendedAgentCard(card *a2a.AgentCard) Option {
	return func(h *RequestHandler) {
		h.extendedCard = card
	}
}

// WithLogger sets the [*slog.Logger] for the [RequestHandler].
func WithLogger(logger *slog.Logger) Option {
	return func(h *RequestHandler) {
		h.logger = logger
	}
}

// WithTracer sets the [trace.Tracer] for the [RequestHandler].
func WithTracer(tracer trace.Tracer) Option {
	return func(h *RequestHandler) {
		h.tracer = tracer
	}
}
