// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"gorm.io/gorm"

	a2a "github.com/go-a2a/runtime"
)

// TaskModel is the GORM row shape a task is persisted as. The full task is
// stored as a JSON blob; ID, context and state are lifted into columns for
// querying.
type TaskModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	ContextID string `gorm:"index;size:64"`
	State     string `gorm:"size:32"`
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for the TaskModel.
func (TaskModel) TableName() string {
	return "a2a_tasks"
}

// NewTaskModel converts a task into its row shape.
func NewTaskModel(task *a2a.Task) (*TaskModel, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}
	return &TaskModel{
		ID:        task.ID,
		ContextID: task.ContextID,
		State:     string(task.Status.State),
		Data:      data,
	}, nil
}

// Task converts the row back into a task.
func (m *TaskModel) Task() (*a2a.Task, error) {
	var task a2a.Task
	if err := json.Unmarshal(m.Data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task %q: %w", m.ID, err)
	}
	return &task, nil
}

// DatabaseStore is a GORM-backed Store implementation.
type DatabaseStore struct {
	db *gorm.DB
}

var _ Store = (*DatabaseStore)(nil)

// DatabaseStoreConfig holds configuration for DatabaseStore.
type DatabaseStoreConfig struct {
	DB *gorm.DB

	// AutoMigrate creates the tasks table if it does not exist.
	AutoMigrate bool
}

// NewDatabaseStore creates a DatabaseStore over an open GORM connection.
func NewDatabaseStore(config DatabaseStoreConfig) (*DatabaseStore, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if config.AutoMigrate {
		if err := config.DB.AutoMigrate(&TaskModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate task table: %w", err)
		}
	}
	return &DatabaseStore{db: config.DB}, nil
}

// Save persists the task, inserting or updating its row.
func (s *DatabaseStore) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	model, err := NewTaskModel(task)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save task %q: %w", task.ID, err)
	}
	return nil
}

// Get retrieves a task by ID. The JSON round-trip through the row yields an
// independent copy.
func (s *DatabaseStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	var model TaskModel
	if err := s.db.WithContext(ctx).Where("id = ?", taskID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a2a.ErrTaskNotFound.WithMessage("task %q not found", taskID)
		}
		return nil, fmt.Errorf("failed to load task %q: %w", taskID, err)
	}
	return model.Task()
}

// Delete removes the task row.
func (s *DatabaseStore) Delete(ctx context.Context, taskID string) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if err := s.db.WithContext(ctx).Where("id = ?", taskID).Delete(&TaskModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete task %q: %w", taskID, err)
	}
	return nil
}
