// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package task implements task state management for the A2A runtime: the
// storage contracts, the event folding that builds the authoritative task
// snapshot, the result aggregator consumed by blocking and streaming calls,
// and the push notification sender.
package task

import (
	"context"
	"fmt"
	"sync"

	a2a "github.com/go-a2a/runtime"
)

// Store is the durable storage contract for tasks. Implementations must
// return independent copies so callers cannot alias live stored state, and
// must be safe for concurrent access keyed by task ID.
type Store interface {
	// Save persists the task, replacing any previous snapshot.
	Save(ctx context.Context, task *a2a.Task) error

	// Get retrieves a task by ID. Returns a2a.ErrTaskNotFound if absent.
	Get(ctx context.Context, taskID string) (*a2a.Task, error)

	// Delete removes a task. Deleting an absent task is not an error.
	Delete(ctx context.Context, taskID string) error
}

// InMemoryStore keeps tasks in a mutex-protected map. Task data is lost
// when the process stops.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*a2a.Task
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tasks: make(map[string]*a2a.Task),
	}
}

// Save persists a deep copy of the task.
func (s *InMemoryStore) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if task.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	clone, err := task.Clone()
	if err != nil {
		return fmt.Errorf("failed to copy task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = clone
	return nil
}

// Get retrieves a deep copy of the task by ID.
func (s *InMemoryStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.RLock()
	task, ok := s.tasks[taskID]
	s.mu.RUnlock()

	if !ok {
		return nil, a2a.ErrTaskNotFound.WithMessage("task %q not found", taskID)
	}
	return task.Clone()
}

// Delete removes the task.
func (s *InMemoryStore) Delete(ctx context.Context, taskID string) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, taskID)
	return nil
}
