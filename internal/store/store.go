// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package store is the record store behind the capture pipeline. It wraps
// the database with the lookups the materializer needs (active sessions,
// open episodes, entity and tracker-definition upserts) and keeps short
// read caches for the hot snapshot reads done at pipeline start.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/daybook-io/daybook/internal/database"
)

// Cache keys for snapshot reads
const (
	cacheKeyEvents        = "events"
	cacheKeyTrackerDefs   = "tracker_defs"
	cacheKeyTaxonomyRules = "taxonomy_rules"
	cacheKeyHabitDefs     = "habit_defs"
)

// Store provides persistence for captures and their derived records.
type Store struct {
	db    *gorm.DB
	cache *gocache.Cache
}

// NewStore creates a new store
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

// DB exposes the underlying handle for callers that need raw access.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// NewID returns a new sortable record id.
func NewID() string {
	return ulid.Make().String()
}

// CreateNote persists a raw capture.
func (s *Store) CreateNote(note *database.Note) error {
	if note.ID == "" {
		note.ID = NewID()
	}
	if err := s.db.Create(note).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// GetNote retrieves a note by id.
func (s *Store) GetNote(id string) (*database.Note, error) {
	var note database.Note
	if err := s.db.First(&note, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}

// AppendNoteEntityIDs adds resolved entity ids to a note. The note body is
// immutable; this is the only field appended after creation.
func (s *Store) AppendNoteEntityIDs(noteID string, entityIDs []string) error {
	if len(entityIDs) == 0 {
		return nil
	}

	var note database.Note
	if err := s.db.First(&note, "id = ?", noteID).Error; err != nil {
		return fmt.Errorf("failed to load note: %w", err)
	}

	for _, id := range entityIDs {
		if !note.EntityIDs.Contains(id) {
			note.EntityIDs = append(note.EntityIDs, id)
		}
	}

	if err := s.db.Model(&note).Update("entity_ids", note.EntityIDs).Error; err != nil {
		return fmt.Errorf("failed to update note entities: %w", err)
	}
	return nil
}

// SetNoteFilePath records where the journal export landed.
func (s *Store) SetNoteFilePath(noteID, path string) error {
	if err := s.db.Model(&database.Note{}).Where("id = ?", noteID).Update("file_path", path).Error; err != nil {
		return fmt.Errorf("failed to update note file path: %w", err)
	}
	return nil
}

// EnsureEntity finds or creates the canonical entity for (kind, key).
// The key is normalized to lowercase, so repeated resolution of the same
// raw string is idempotent.
func (s *Store) EnsureEntity(kind, key, label string) (*database.Entity, error) {
	if !database.IsValidEntityKind(kind) {
		return nil, fmt.Errorf("invalid entity kind: %s", kind)
	}

	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return nil, fmt.Errorf("entity key cannot be empty")
	}
	if label == "" {
		label = key
	}

	var entity database.Entity
	err := s.db.Where("kind = ? AND key = ?", kind, normalized).
		Attrs(database.Entity{ID: NewID(), Label: label}).
		FirstOrCreate(&entity, database.Entity{Kind: kind, Key: normalized}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure entity: %w", err)
	}
	return &entity, nil
}

// ListHabitDefs returns all habit definitions.
func (s *Store) ListHabitDefs() ([]database.HabitDef, error) {
	if cached, found := s.cache.Get(cacheKeyHabitDefs); found {
		return cached.([]database.HabitDef), nil
	}

	var habits []database.HabitDef
	if err := s.db.Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	s.cache.Set(cacheKeyHabitDefs, habits, gocache.DefaultExpiration)
	return habits, nil
}

// CreateHabitDef persists a habit definition.
func (s *Store) CreateHabitDef(habit *database.HabitDef) error {
	if habit.ID == "" {
		habit.ID = NewID()
	}
	if habit.Polarity == "" {
		habit.Polarity = database.HabitPolarityPositive
	}
	if !database.IsValidHabitPolarity(habit.Polarity) {
		return fmt.Errorf("invalid habit polarity: %s", habit.Polarity)
	}
	if err := s.db.Create(habit).Error; err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	s.cache.Delete(cacheKeyHabitDefs)
	return nil
}
