// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/go-json-experiment/json"
)

// Event is the tagged union an agent executor publishes while working on a
// task: an initial *Task snapshot, a *TaskStatusUpdateEvent, a
// *TaskArtifactUpdateEvent, or a closing *Message for message-only responses
// that never become a task.
type Event interface {
	// EventKind returns the wire discriminator for the event.
	EventKind() string

	// Validate ensures the event is well formed.
	Validate() error
}

// EventKind returns the wire discriminator for the event.
func (t *Task) EventKind() string { return KindTask }

// EventKind returns the wire discriminator for the event.
func (m *Message) EventKind() string { return KindMessage }

// TaskStatusUpdateEvent signals a task lifecycle state change.
type TaskStatusUpdateEvent struct {
	// Kind is always "status-update".
	Kind string `json:"kind"`

	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`

	// Final marks the terminal event of the stream. Exactly one event per
	// stream may carry it.
	Final bool `json:"final"`

	Metadata map[string]any `json:"metadata,omitzero"`
}

// EventKind returns the wire discriminator for the event.
func (e *TaskStatusUpdateEvent) EventKind() string { return KindStatusUpdate }

// Validate ensures the TaskStatusUpdateEvent is valid.
func (e *TaskStatusUpdateEvent) Validate() error {
	if e.Kind != KindStatusUpdate {
		return fmt.Errorf("status update kind must be %q, got %q", KindStatusUpdate, e.Kind)
	}
	if e.TaskID == "" {
		return fmt.Errorf("status update task ID cannot be empty")
	}
	if err := e.Status.Validate(); err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}
	if e.Final && !e.Status.State.Terminal() && !e.Status.State.Interrupted() {
		return fmt.Errorf("final status update must carry a terminal or interrupted state, got %q", e.Status.State)
	}
	return nil
}

// TaskArtifactUpdateEvent delivers an artifact or artifact chunk.
type TaskArtifactUpdateEvent struct {
	// Kind is always "artifact-update".
	Kind string `json:"kind"`

	TaskID    string    `json:"taskId"`
	ContextID string    `json:"contextId"`
	Artifact  *Artifact `json:"artifact"`

	// Append indicates the parts continue the artifact with the same ID.
	Append bool `json:"append,omitzero"`

	// LastChunk marks the artifact complete.
	LastChunk bool `json:"lastChunk,omitzero"`

	Metadata map[string]any `json:"metadata,omitzero"`
}

// EventKind returns the wire discriminator for the event.
func (e *TaskArtifactUpdateEvent) EventKind() string { return KindArtifactUpdate }

// Validate ensures the TaskArtifactUpdateEvent is valid.
func (e *TaskArtifactUpdateEvent) Validate() error {
	if e.Kind != KindArtifactUpdate {
		return fmt.Errorf("artifact update kind must be %q, got %q", KindArtifactUpdate, e.Kind)
	}
	if e.TaskID == "" {
		return fmt.Errorf("artifact update task ID cannot be empty")
	}
	if e.Artifact == nil {
		return fmt.Errorf("artifact update artifact cannot be nil")
	}
	return e.Artifact.Validate()
}

// NewStatusUpdate returns a non-final status update event for the task.
func NewStatusUpdate(task *Task, status TaskStatus) *TaskStatusUpdateEvent {
	return &TaskStatusUpdateEvent{
		Kind:      KindStatusUpdate,
		TaskID:    task.ID,
		ContextID: task.ContextID,
		Status:    status,
	}
}

// NewFinalStatusUpdate returns the terminal status update event for the task.
func NewFinalStatusUpdate(task *Task, status TaskStatus) *TaskStatusUpdateEvent {
	e := NewStatusUpdate(task, status)
	e.Final = true
	return e
}

// NewArtifactUpdate returns an artifact update event for the task.
func NewArtifactUpdate(task *Task, artifact *Artifact) *TaskArtifactUpdateEvent {
	return &TaskArtifactUpdateEvent{
		Kind:      KindArtifactUpdate,
		TaskID:    task.ID,
		ContextID: task.ContextID,
		Artifact:  artifact,
	}
}

// Final reports whether the event terminates its stream: a status update
// marked final, or a bare message response.
func Final(e Event) bool {
	switch ev := e.(type) {
	case *TaskStatusUpdateEvent:
		return ev.Final
	case *Message:
		return true
	}
	return false
}

// UnmarshalEvent decodes an event, dispatching on its kind discriminator.
func UnmarshalEvent(data []byte) (Event, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event kind: %w", err)
	}

	switch probe.Kind {
	case KindTask:
		var t Task
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task event: %w", err)
		}
		return &t, nil
	case KindMessage:
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message event: %w", err)
		}
		return &m, nil
	case KindStatusUpdate:
		var e TaskStatusUpdateEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status update event: %w", err)
		}
		return &e, nil
	case KindArtifactUpdate:
		var e TaskArtifactUpdateEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal artifact update event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unknown event kind: %q", probe.Kind)
	}
}
