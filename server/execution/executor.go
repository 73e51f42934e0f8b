// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package execution defines the contract between the A2A runtime and the
// application-supplied agent: the AgentExecutor interface and the
// per-invocation RequestContext handed to it.
package execution

import (
	"context"

	"github.com/go-a2a/runtime/server/event"
)

// AgentExecutor contains the core business logic of an agent. The runtime
// invokes Execute once per task attempt; the executor reads the
// RequestContext and publishes Task, Message, status update and artifact
// update events onto the bus. The runtime, not the executor, guarantees the
// bus is finished afterwards.
type AgentExecutor interface {
	// Execute runs the agent's main logic for one request. It runs until
	// the work is done or ctx is canceled, publishing events as it goes.
	// The final published event must be terminal: a status update marked
	// final, or a bare message.
	Execute(ctx context.Context, reqCtx *RequestContext, bus *event.Bus) error

	// Cancel asks the agent to stop an ongoing task. The agent is expected
	// to eventually publish a terminal canceled status update on the same
	// bus the task is executing on.
	Cancel(ctx context.Context, taskID string, bus *event.Bus) error
}
