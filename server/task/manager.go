// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	a2a "github.com/go-a2a/runtime"
)

// Manager folds the event stream of one task attempt into the authoritative
// task snapshot and writes it through to the Store after every update. It is
// bound to a single task and context ID for its lifetime.
//
// A read-only Manager folds the same way but never writes: the invocation
// owner is the single writer for a task attempt, and every other consumer of
// the same bus folds the replayed sequence purely in memory. Folding the
// replay against the store would apply already-persisted events a second
// time.
type Manager struct {
	taskID    string
	contextID string
	store     Store
	readOnly  bool
	logger    *slog.Logger

	mu   sync.RWMutex
	task *a2a.Task
}

// ManagerConfig holds configuration for creating a Manager.
type ManagerConfig struct {
	TaskID    string
	ContextID string
	Store     Store

	// ReadOnly disables persistence: the snapshot is folded purely from the
	// observed event sequence. Set for consumers attaching to an invocation
	// another Manager already persists for.
	ReadOnly bool

	Logger *slog.Logger
}

// NewManager creates a Manager bound to one task attempt.
func NewManager(config ManagerConfig) (*Manager, error) {
	if config.TaskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}
	if config.ContextID == "" {
		return nil, fmt.Errorf("context ID cannot be empty")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		taskID:    config.TaskID,
		contextID: config.ContextID,
		store:     config.Store,
		readOnly:  config.ReadOnly,
		logger:    logger,
	}, nil
}

// TaskID returns the task ID the manager is bound to.
func (m *Manager) TaskID() string { return m.taskID }

// ContextID returns the context ID the manager is bound to.
func (m *Manager) ContextID() string { return m.contextID }

// Task returns a snapshot of the current task, loading it from the store if
// it is not cached yet. Returns a2a.ErrTaskNotFound if no task exists.
func (m *Manager) Task(ctx context.Context) (*a2a.Task, error) {
	m.mu.RLock()
	cached := m.task
	m.mu.RUnlock()

	if cached != nil {
		return cached.Clone()
	}

	task, err := m.store.Get(ctx, m.taskID)
	if err != nil {
		return nil, err
	}

	// A read-only manager folds purely from its event sequence; adopting
	// store state here would mix already-persisted events into the fold.
	if !m.readOnly {
		m.mu.Lock()
		m.task = task
		m.mu.Unlock()
	}
	return task.Clone()
}

// Process folds one event into the task snapshot and, unless the manager
// is read-only, persists the result before returning, so the store is
// always consistent with the last observed event. Message events carry no
// task state and are ignored.
func (m *Manager) Process(ctx context.Context, e a2a.Event) error {
	if e == nil {
		return fmt.Errorf("event cannot be nil")
	}

	switch event := e.(type) {
	case *a2a.Task:
		return m.replaceSnapshot(ctx, event)
	case *a2a.TaskStatusUpdateEvent:
		return m.applyStatus(ctx, event)
	case *a2a.TaskArtifactUpdateEvent:
		return m.applyArtifact(ctx, event)
	case *a2a.Message:
		// Terminal message responses never become task state.
		return nil
	default:
		return a2a.ErrInvalidAgentResponse.WithMessage("unsupported event kind %q", e.EventKind())
	}
}

// replaceSnapshot adopts a bare Task event as the new working snapshot.
func (m *Manager) replaceSnapshot(ctx context.Context, task *a2a.Task) error {
	if task.ID != m.taskID {
		return a2a.ErrInvalidAgentResponse.WithMessage("task event for %q on bus for %q", task.ID, m.taskID)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", a2a.ErrInvalidAgentResponse, err)
	}

	clone, err := task.Clone()
	if err != nil {
		return fmt.Errorf("failed to copy task event: %w", err)
	}
	return m.persist(ctx, clone)
}

// applyStatus overwrites the task status and appends the status message, if
// any, to the history.
func (m *Manager) applyStatus(ctx context.Context, event *a2a.TaskStatusUpdateEvent) error {
	if event.TaskID != m.taskID {
		return a2a.ErrInvalidAgentResponse.WithMessage("status update for %q on bus for %q", event.TaskID, m.taskID)
	}

	task, err := m.ensureTask(ctx)
	if err != nil {
		return err
	}

	if !a2a.ValidTransition(task.Status.State, event.Status.State) {
		return a2a.ErrInvalidAgentResponse.WithMessage(
			"invalid state transition %q -> %q for task %q", task.Status.State, event.Status.State, m.taskID)
	}

	task.Status = event.Status
	if event.Status.Message != nil {
		task.History = append(task.History, event.Status.Message)
	}

	return m.persist(ctx, task)
}

// applyArtifact appends a new artifact or concatenates a chunk onto the
// artifact with the same ID when the event carries append.
func (m *Manager) applyArtifact(ctx context.Context, event *a2a.TaskArtifactUpdateEvent) error {
	if event.TaskID != m.taskID {
		return a2a.ErrInvalidAgentResponse.WithMessage("artifact update for %q on bus for %q", event.TaskID, m.taskID)
	}
	if event.Artifact == nil {
		return a2a.ErrInvalidAgentResponse.WithMessage("artifact update without artifact for task %q", m.taskID)
	}

	task, err := m.ensureTask(ctx)
	if err != nil {
		return err
	}

	if event.Append {
		idx := -1
		for i, art := range task.Artifacts {
			if art.ArtifactID == event.Artifact.ArtifactID {
				idx = i
				break
			}
		}
		if idx < 0 {
			// Nothing to continue; treat the chunk as a fresh artifact.
			m.logger.WarnContext(ctx, "append chunk for unknown artifact, starting new artifact",
				"task_id", m.taskID, "artifact_id", event.Artifact.ArtifactID)
			task.Artifacts = append(task.Artifacts, event.Artifact)
		} else {
			task.Artifacts[idx].Parts = append(task.Artifacts[idx].Parts, event.Artifact.Parts...)
		}
	} else {
		task.Artifacts = append(task.Artifacts, event.Artifact)
	}

	return m.persist(ctx, task)
}

// ensureTask returns the working snapshot, creating a fresh submitted task
// when the executor emits updates without an initial Task event. A
// read-only manager always starts from the fresh task: its event sequence
// is a complete replay, and mixing it with already-persisted store state
// would fold the replayed prefix twice.
func (m *Manager) ensureTask(ctx context.Context) (*a2a.Task, error) {
	m.mu.RLock()
	cached := m.task
	m.mu.RUnlock()

	if cached != nil {
		return cached, nil
	}

	if !m.readOnly {
		task, err := m.store.Get(ctx, m.taskID)
		if err == nil {
			m.mu.Lock()
			m.task = task
			m.mu.Unlock()
			return task, nil
		}
		if !errors.Is(err, a2a.ErrTaskNotFound) {
			return nil, fmt.Errorf("failed to load task: %w", err)
		}
	}

	task := &a2a.Task{
		Kind:      a2a.KindTask,
		ID:        m.taskID,
		ContextID: m.contextID,
		Status:    a2a.NewTaskStatus(a2a.TaskStateSubmitted, nil),
	}
	m.mu.Lock()
	m.task = task
	m.mu.Unlock()
	return task, nil
}

// persist adopts the snapshot and, unless the manager is read-only, writes
// it through to the store.
func (m *Manager) persist(ctx context.Context, task *a2a.Task) error {
	if !m.readOnly {
		if err := m.store.Save(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
	}
	m.mu.Lock()
	m.task = task
	m.mu.Unlock()
	return nil
}
