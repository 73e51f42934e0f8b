// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
)

// NewTask creates a Task from an inbound message. If the message does not
// reference a task or context, new UUIDs are generated. The task starts in
// the submitted state with the message as the first history entry.
func NewTask(message *Message) (*Task, error) {
	if message == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}
	if err := message.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request message: %w", err)
	}

	taskID := message.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}
	contextID := message.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}

	hist := *message
	hist.TaskID = taskID
	hist.ContextID = contextID

	return &Task{
		Kind:      KindTask,
		ID:        taskID,
		ContextID: contextID,
		Status:    NewTaskStatus(TaskStateSubmitted, nil),
		History:   []*Message{&hist},
	}, nil
}

// ValidTransition reports whether the task lifecycle permits moving from one
// state to another. Terminal states absorb; working may bounce to and from
// the interrupted states while the executor waits for input or credentials.
func ValidTransition(from, to TaskState) bool {
	if from.Terminal() {
		return false
	}
	if from == to {
		return true
	}

	switch from {
	case TaskStateSubmitted:
		switch to {
		case TaskStateWorking, TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected:
			return true
		}
	case TaskStateWorking:
		switch to {
		case TaskStateInputRequired, TaskStateAuthRequired,
			TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected:
			return true
		}
	case TaskStateInputRequired, TaskStateAuthRequired:
		switch to {
		case TaskStateWorking, TaskStateCanceled, TaskStateFailed:
			return true
		}
	case TaskStateUnknown:
		return true
	}
	return false
}

// Clone returns a deep copy of the task via a JSON round-trip, so stores can
// hand out independent snapshots without aliasing live state.
func (t *Task) Clone() (*Task, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}
	var out Task
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &out, nil
}
