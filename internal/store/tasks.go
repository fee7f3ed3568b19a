// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/daybook-io/daybook/internal/database"
)

// CreateTask persists a new task.
func (s *Store) CreateTask(task *database.Task) error {
	if task.ID == "" {
		task.ID = NewID()
	}
	if task.Status == "" {
		task.Status = database.TaskStatusTodo
	}
	if !database.IsValidTaskStatus(task.Status) {
		return fmt.Errorf("invalid task status: %s", task.Status)
	}

	if err := s.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpsertTask saves all fields of an existing task.
func (s *Store) UpsertTask(task *database.Task) error {
	if task.ID == "" {
		return s.CreateTask(task)
	}
	if err := s.db.Save(task).Error; err != nil {
		return fmt.Errorf("failed to upsert task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(id string) (*database.Task, error) {
	var task database.Task
	if err := s.db.First(&task, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// ListTasks returns tasks, optionally filtered by status.
func (s *Store) ListTasks(status string) ([]database.Task, error) {
	query := s.db.Order("created_at ASC")
	if status != "" {
		if !database.IsValidTaskStatus(status) {
			return nil, fmt.Errorf("invalid task status: %s", status)
		}
		query = query.Where("status = ?", status)
	}

	var tasks []database.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksBySourceNote returns every task derived from a capture.
func (s *Store) ListTasksBySourceNote(noteID string) ([]database.Task, error) {
	var tasks []database.Task
	if err := s.db.Where("source_note_id = ?", noteID).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks for note: %w", err)
	}
	return tasks, nil
}

// FindTaskByToken returns the task linked to a note-item token, or nil.
func (s *Store) FindTaskByToken(token string) (*database.Task, error) {
	if token == "" {
		return nil, nil
	}

	var task database.Task
	err := s.db.Where("item_token = ?", token).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by token: %w", err)
	}
	return &task, nil
}

// FindTaskByTitleUnderParent returns a title-matching task under the same
// parent event, or nil. Matching is exact on title.
func (s *Store) FindTaskByTitleUnderParent(title string, parentEventID *string) (*database.Task, error) {
	query := s.db.Where("title = ?", title)
	if parentEventID != nil {
		query = query.Where("parent_event_id = ?", *parentEventID)
	} else {
		query = query.Where("parent_event_id IS NULL")
	}

	var task database.Task
	err := query.First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by title: %w", err)
	}
	return &task, nil
}
