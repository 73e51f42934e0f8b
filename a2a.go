// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package a2a provides the data model for the Agent-to-Agent (A2A) protocol:
// tasks, messages, artifacts, lifecycle events and push notification
// configuration, with JSON serialization matching the protocol wire format.
package a2a

import (
	"fmt"
	"time"
)

// Version is the A2A protocol version this module implements.
const Version = "0.2.5"

// TaskState represents the lifecycle state of a Task.
type TaskState string

const (
	// TaskStateSubmitted indicates the task has been received but work has not started.
	TaskStateSubmitted TaskState = "submitted"

	// TaskStateWorking indicates the agent is actively working on the task.
	TaskStateWorking TaskState = "working"

	// TaskStateInputRequired indicates the agent is paused waiting for more input.
	TaskStateInputRequired TaskState = "input-required"

	// TaskStateAuthRequired indicates the agent is paused waiting for credentials.
	TaskStateAuthRequired TaskState = "auth-required"

	// TaskStateCompleted indicates the task finished successfully.
	TaskStateCompleted TaskState = "completed"

	// TaskStateFailed indicates the task finished with an error.
	TaskStateFailed TaskState = "failed"

	// TaskStateCanceled indicates the task was canceled before completion.
	TaskStateCanceled TaskState = "canceled"

	// TaskStateRejected indicates the agent refused to work on the task.
	TaskStateRejected TaskState = "rejected"

	// TaskStateUnknown indicates the task state could not be determined.
	TaskStateUnknown TaskState = "unknown"
)

// Terminal reports whether the state admits no further transitions.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected:
		return true
	}
	return false
}

// Interrupted reports whether the state pauses execution pending caller action.
func (s TaskState) Interrupted() bool {
	return s == TaskStateInputRequired || s == TaskStateAuthRequired
}

// Valid reports whether s is a known task state.
func (s TaskState) Valid() bool {
	switch s {
	case TaskStateSubmitted, TaskStateWorking, TaskStateInputRequired, TaskStateAuthRequired,
		TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected, TaskStateUnknown:
		return true
	}
	return false
}

// TaskStatus captures the current lifecycle state of a task together with the
// agent message attached to the transition, if any.
type TaskStatus struct {
	State TaskState `json:"state"`

	// Message optionally carries the agent utterance that accompanied the
	// state change.
	Message *Message `json:"message,omitzero"`

	// Timestamp is the RFC 3339 time the status was recorded.
	Timestamp string `json:"timestamp,omitzero"`
}

// Validate ensures the TaskStatus is valid.
func (ts TaskStatus) Validate() error {
	if !ts.State.Valid() {
		return fmt.Errorf("invalid task state: %q", ts.State)
	}
	if ts.Message != nil {
		if err := ts.Message.Validate(); err != nil {
			return fmt.Errorf("invalid status message: %w", err)
		}
	}
	return nil
}

// NewTaskStatus returns a TaskStatus for state stamped with the current time.
func NewTaskStatus(state TaskState, message *Message) TaskStatus {
	return TaskStatus{
		State:     state,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Task is the durable unit of agent work. ID and ContextID are immutable
// after creation; Status only moves along the lifecycle transition table.
type Task struct {
	// Kind is always "task".
	Kind string `json:"kind"`

	// ID uniquely identifies the task.
	ID string `json:"id"`

	// ContextID groups related tasks and messages into one conversation.
	ContextID string `json:"contextId"`

	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`

	// History is the ordered sequence of messages exchanged so far.
	History []*Message `json:"history,omitzero"`

	// Artifacts are the outputs produced by the agent, in creation order.
	Artifacts []*Artifact `json:"artifacts,omitzero"`

	// Metadata is an open key/value bag never interpreted by the runtime.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the Task is valid.
func (t *Task) Validate() error {
	if t.Kind != KindTask {
		return fmt.Errorf("task kind must be %q, got %q", KindTask, t.Kind)
	}
	if t.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if t.ContextID == "" {
		return fmt.Errorf("task context ID cannot be empty")
	}
	if err := t.Status.Validate(); err != nil {
		return fmt.Errorf("invalid task status: %w", err)
	}
	return nil
}

// PushNotificationAuthenticationInfo describes how to authenticate against a
// push notification endpoint.
type PushNotificationAuthenticationInfo struct {
	// Schemes lists the supported authentication schemes, e.g. "bearer".
	Schemes []string `json:"schemes"`

	// Credentials optionally carries scheme-specific credential material.
	Credentials string `json:"credentials,omitzero"`
}

// PushNotificationConfig describes one webhook endpoint registered for task
// state change notifications.
type PushNotificationConfig struct {
	// ID identifies the config within its task; server-assigned if empty.
	ID string `json:"id,omitzero"`

	// URL is the webhook endpoint to POST task snapshots to.
	URL string `json:"url"`

	// Token, if set, is echoed back in the X-A2A-Notification-Token header.
	Token string `json:"token,omitzero"`

	// Authentication optionally describes endpoint authentication.
	Authentication *PushNotificationAuthenticationInfo `json:"authentication,omitzero"`
}

// Validate ensures the PushNotificationConfig is valid.
func (c *PushNotificationConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("push notification config URL cannot be empty")
	}
	return nil
}

// TaskPushNotificationConfig binds a PushNotificationConfig to a task.
type TaskPushNotificationConfig struct {
	TaskID                 string                 `json:"taskId"`
	PushNotificationConfig PushNotificationConfig `json:"pushNotificationConfig"`
}

// Validate ensures the TaskPushNotificationConfig is valid.
func (c *TaskPushNotificationConfig) Validate() error {
	if c.TaskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	return c.PushNotificationConfig.Validate()
}

// AgentCapabilities declares optional protocol features an agent supports.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming,omitzero"`
	PushNotifications      bool `json:"pushNotifications,omitzero"`
	StateTransitionHistory bool `json:"stateTransitionHistory,omitzero"`
}

// AgentSkill describes one unit of capability an agent advertises.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitzero"`
	Tags        []string `json:"tags,omitzero"`
	Examples    []string `json:"examples,omitzero"`
	InputModes  []string `json:"inputModes,omitzero"`
	OutputModes []string `json:"outputModes,omitzero"`
}

// AgentCard is the discovery document describing an agent: identity,
// endpoint, capabilities and skills.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description,omitzero"`
	URL                string            `json:"url"`
	Version            string            `json:"version"`
	ProtocolVersion    string            `json:"protocolVersion,omitzero"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes,omitzero"`
	DefaultOutputModes []string          `json:"defaultOutputModes,omitzero"`
	Skills             []AgentSkill      `json:"skills,omitzero"`

	// SupportsAuthenticatedExtendedCard indicates an extended card is
	// available behind authentication.
	SupportsAuthenticatedExtendedCard bool `json:"supportsAuthenticatedExtendedCard,omitzero"`
}

// Validate ensures the AgentCard is valid.
func (c *AgentCard) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("agent card name cannot be empty")
	}
	if c.URL == "" {
		return fmt.Errorf("agent card URL cannot be empty")
	}
	if c.Version == "" {
		return fmt.Errorf("agent card version cannot be empty")
	}
	return nil
}
