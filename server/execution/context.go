// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package execution

import (
	"context"
	"fmt"

	a2a "github.com/go-a2a/runtime"
	"github.com/go-a2a/runtime/auth"
)

// RequestContext holds everything the agent needs about the request being
// processed: the inbound message, resolved task and context IDs, the
// existing task when resuming, and any related tasks supplied for context.
// A RequestContext is owned exclusively by one executor invocation and is
// never shared across tasks.
type RequestContext struct {
	params       *a2a.MessageSendParams
	taskID       string
	contextID    string
	currentTask  *a2a.Task
	relatedTasks []*a2a.Task
	user         auth.User
}

// NewRequestContext creates a RequestContext. taskID and contextID must
// already be resolved by the caller.
func NewRequestContext(params *a2a.MessageSendParams, taskID, contextID string, currentTask *a2a.Task, user auth.User) (*RequestContext, error) {
	if params == nil || params.Message == nil {
		return nil, fmt.Errorf("message send params cannot be nil")
	}
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}
	if contextID == "" {
		return nil, fmt.Errorf("context ID cannot be empty")
	}
	if user == nil {
		user = auth.UnauthenticatedUser{}
	}

	return &RequestContext{
		params:      params,
		taskID:      taskID,
		contextID:   contextID,
		currentTask: currentTask,
		user:        user,
	}, nil
}

// Params returns the inbound message send parameters.
func (rc *RequestContext) Params() *a2a.MessageSendParams { return rc.params }

// Message returns the inbound user message.
func (rc *RequestContext) Message() *a2a.Message { return rc.params.Message }

// TaskID returns the resolved task ID.
func (rc *RequestContext) TaskID() string { return rc.taskID }

// ContextID returns the resolved conversation context ID.
func (rc *RequestContext) ContextID() string { return rc.contextID }

// CurrentTask returns the existing task being resumed, or nil for a fresh
// task.
func (rc *RequestContext) CurrentTask() *a2a.Task { return rc.currentTask }

// RelatedTasks returns other tasks supplied as context for this request.
func (rc *RequestContext) RelatedTasks() []*a2a.Task { return rc.relatedTasks }

// AddRelatedTask attaches a task as context for this request.
func (rc *RequestContext) AddRelatedTask(task *a2a.Task) {
	rc.relatedTasks = append(rc.relatedTasks, task)
}

// User returns the caller identity associated with the request.
func (rc *RequestContext) User() auth.User { return rc.user }

// ContextBuilder builds the RequestContext supplied to the AgentExecutor.
// Applications can provide their own implementation to attach extra state,
// for example reference tasks loaded from storage.
type ContextBuilder interface {
	Build(ctx context.Context, params *a2a.MessageSendParams, taskID, contextID string, currentTask *a2a.Task, user auth.User) (*RequestContext, error)
}

// SimpleContextBuilder is the default ContextBuilder. It populates the
// RequestContext directly from the resolved request parameters.
type SimpleContextBuilder struct{}

var _ ContextBuilder = (*SimpleContextBuilder)(nil)

// Build creates a RequestContext from the provided parameters.
func (SimpleContextBuilder) Build(ctx context.Context, params *a2a.MessageSendParams, taskID, contextID string, currentTask *a2a.Task, user auth.User) (*RequestContext, error) {
	return NewRequestContext(params, taskID, contextID, currentTask, user)
}
