// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewTask(t *testing.T) {
	t.Run("generates ids when absent", func(t *testing.T) {
		msg := NewUserMessage(NewTextPart("hi"))
		task, err := NewTask(msg)
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		if task.ID == "" || task.ContextID == "" {
			t.Errorf("NewTask() must generate ids, got id=%q contextId=%q", task.ID, task.ContextID)
		}
		if task.Status.State != TaskStateSubmitted {
			t.Errorf("Status.State = %q, want %q", task.Status.State, TaskStateSubmitted)
		}
		if len(task.History) != 1 {
			t.Fatalf("History length = %d, want 1", len(task.History))
		}
		if task.History[0].TaskID != task.ID {
			t.Errorf("history message task id = %q, want %q", task.History[0].TaskID, task.ID)
		}
	})

	t.Run("keeps referenced ids", func(t *testing.T) {
		msg := NewUserMessage(NewTextPart("hi"))
		msg.TaskID = "task-7"
		msg.ContextID = "ctx-7"
		task, err := NewTask(msg)
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		if task.ID != "task-7" || task.ContextID != "ctx-7" {
			t.Errorf("NewTask() ids = (%q, %q), want (task-7, ctx-7)", task.ID, task.ContextID)
		}
	})

	t.Run("rejects nil message", func(t *testing.T) {
		if _, err := NewTask(nil); err == nil {
			t.Error("NewTask(nil) expected error")
		}
	})
}

func TestTask_Clone(t *testing.T) {
	task := &Task{
		Kind:      KindTask,
		ID:        "task-1",
		ContextID: "ctx-1",
		Status:    NewTaskStatus(TaskStateWorking, nil),
		History:   []*Message{NewUserMessage(NewTextPart("hi"))},
		Artifacts: []*Artifact{NewTextArtifact("out", "partial")},
		Metadata:  map[string]any{"origin": "test"},
	}

	clone, err := task.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	if diff := cmp.Diff(task, clone); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	// Mutating the clone must not leak into the original.
	clone.Status.State = TaskStateCompleted
	clone.History[0].Parts[0].(*TextPart).Text = "changed"
	if task.Status.State != TaskStateWorking {
		t.Error("clone mutation leaked into original status")
	}
	if task.History[0].Parts[0].(*TextPart).Text != "hi" {
		t.Error("clone mutation leaked into original history")
	}
}
