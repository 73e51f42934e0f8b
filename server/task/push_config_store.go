// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	a2a "github.com/go-a2a/runtime"
)

// PushConfigStore is the storage contract for push notification
// configurations. Multiple configs may be registered per task; each
// registered endpoint receives every notification for that task.
type PushConfigStore interface {
	// Save registers or updates a config for the task. A config without an
	// ID is assigned one; the stored config is returned.
	Save(ctx context.Context, taskID string, config *a2a.PushNotificationConfig) (*a2a.PushNotificationConfig, error)

	// Load returns all configs registered for the task, in registration
	// order. An unknown task yields an empty slice, not an error.
	Load(ctx context.Context, taskID string) ([]*a2a.PushNotificationConfig, error)

	// Delete removes the config with the given ID, or every config for the
	// task when configID is empty.
	Delete(ctx context.Context, taskID, configID string) error
}

// InMemoryPushConfigStore keeps push notification configs in a
// mutex-protected map.
type InMemoryPushConfigStore struct {
	mu      sync.RWMutex
	configs map[string][]*a2a.PushNotificationConfig
}

var _ PushConfigStore = (*InMemoryPushConfigStore)(nil)

// NewInMemoryPushConfigStore creates an empty InMemoryPushConfigStore.
func NewInMemoryPushConfigStore() *InMemoryPushConfigStore {
	return &InMemoryPushConfigStore{
		configs: make(map[string][]*a2a.PushNotificationConfig),
	}
}

// Save registers or updates a config for the task.
func (s *InMemoryPushConfigStore) Save(ctx context.Context, taskID string, config *a2a.PushNotificationConfig) (*a2a.PushNotificationConfig, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}
	if config == nil {
		return nil, fmt.Errorf("push notification config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid push notification config: %w", err)
	}

	stored := *config
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.configs[taskID]
	for i, c := range existing {
		if c.ID == stored.ID {
			existing[i] = &stored
			return &stored, nil
		}
	}
	s.configs[taskID] = append(existing, &stored)
	return &stored, nil
}

// Load returns copies of all configs registered for the task.
func (s *InMemoryPushConfigStore) Load(ctx context.Context, taskID string) ([]*a2a.PushNotificationConfig, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*a2a.PushNotificationConfig, 0, len(s.configs[taskID]))
	for _, c := range s.configs[taskID] {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

// Delete removes one config, or all configs for the task when configID is
// empty.
func (s *InMemoryPushConfigStore) Delete(ctx context.Context, taskID, configID string) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if configID == "" {
		delete(s.configs, taskID)
		return nil
	}

	existing := s.configs[taskID]
	s.configs[taskID] = slices.DeleteFunc(existing, func(c *a2a.PushNotificationConfig) bool {
		return c.ID == configID
	})
	if len(s.configs[taskID]) == 0 {
		delete(s.configs, taskID)
	}
	return nil
}
