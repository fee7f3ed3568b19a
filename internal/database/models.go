// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StringList is a string slice stored as a JSON text column.
type StringList []string

// Value implements driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported type for string list: %T", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether the list holds the given value.
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

// Note represents one raw capture: immutable text plus the moment it was
// taken. EntityIDs is the only field appended after creation.
type Note struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	CapturedAt int64      `gorm:"not null;index" json:"captured_at"` // ms epoch
	EntityIDs  StringList `gorm:"type:text" json:"entity_ids"`
	FilePath   string     `json:"file_path"` // journal export location, empty if export disabled
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Note
func (Note) TableName() string {
	return "daybook_notes"
}

// Event kinds. Episodes are long-lived events carrying a tracker key; logs
// are point-in-time readings parented to whatever session was running.
const (
	EventKindEvent   = "event"
	EventKindTask    = "task"
	EventKindLog     = "log"
	EventKindEpisode = "episode"
)

// ValidEventKinds returns all valid event kinds
func ValidEventKinds() []string {
	return []string{EventKindEvent, EventKindTask, EventKindLog, EventKindEpisode}
}

// IsValidEventKind checks if an event kind is valid
func IsValidEventKind(kind string) bool {
	for _, valid := range ValidEventKinds() {
		if kind == valid {
			return true
		}
	}
	return false
}

// Event represents a persisted calendar record. At most one non-log,
// non-episode event may have Active=true at any time system-wide.
type Event struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	Kind          string         `gorm:"not null;index;default:event" json:"kind"`
	StartAt       int64          `gorm:"index" json:"start_at"` // ms epoch
	EndAt         int64          `json:"end_at"`
	Active        bool           `gorm:"index" json:"active"`
	TrackerKey    *string        `gorm:"index" json:"tracker_key,omitempty"`
	ParentEventID *string        `gorm:"index" json:"parent_event_id,omitempty"`
	CompletedAt   *int64         `json:"completed_at,omitempty"`
	Category      string         `json:"category"`
	Subcategory   string         `json:"subcategory"`
	Importance    int            `json:"importance"` // 0 means unset, else 1-10
	Difficulty    int            `json:"difficulty"` // 0 means unset, else 1-10
	Tags          StringList     `gorm:"type:text" json:"tags"`
	Contexts      StringList     `gorm:"type:text" json:"contexts"`
	People        StringList     `gorm:"type:text" json:"people"`
	Skills        StringList     `gorm:"type:text" json:"skills"`
	Character     StringList     `gorm:"type:text" json:"character"`
	Location      string         `json:"location"`
	Goal          string         `json:"goal"`
	Project       string         `json:"project"`
	Notes         string         `gorm:"type:text" json:"notes"`
	SourceNoteID  *string        `gorm:"index" json:"source_note_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name for Event
func (Event) TableName() string {
	return "daybook_events"
}

// IsSession reports whether the event participates in active-session
// exclusivity (logs and episodes are exempt).
func (e *Event) IsSession() bool {
	return e.Kind != EventKindLog && e.Kind != EventKindEpisode
}

// Task statuses
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// ValidTaskStatuses returns all valid task statuses
func ValidTaskStatuses() []string {
	return []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}
}

// IsValidTaskStatus checks if a task status is valid
func IsValidTaskStatus(status string) bool {
	for _, valid := range ValidTaskStatuses() {
		if status == valid {
			return true
		}
	}
	return false
}

// Task represents a persisted to-do item derived from a capture.
type Task struct {
	ID              string         `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"not null" json:"title"`
	Status          string         `gorm:"not null;index;default:todo" json:"status"`
	EstimateMinutes int            `json:"estimate_minutes"`
	DueAt           *int64         `json:"due_at,omitempty"`
	ScheduledAt     *int64         `json:"scheduled_at,omitempty"`
	Category        string         `json:"category"`
	Subcategory     string         `json:"subcategory"`
	Importance      int            `json:"importance"`
	Notes           string         `gorm:"type:text" json:"notes"` // may embed a checklist
	ItemToken       string         `gorm:"index" json:"item_token"`
	ParentEventID   *string        `gorm:"index" json:"parent_event_id,omitempty"`
	SourceNoteID    *string        `gorm:"index" json:"source_note_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "daybook_tasks"
}

// TrackerDef describes a named numeric signal. Created on first encountered
// key; the unit is inferred from the key name (bounded 1-10 score trackers
// vs. open-ended numeric trackers).
type TrackerDef struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	Key          string     `gorm:"uniqueIndex;not null" json:"key"` // lowercase
	Label        string     `gorm:"not null" json:"label"`
	UnitLabel    string     `json:"unit_label"`
	UnitMin      float64    `json:"unit_min"`
	UnitMax      float64    `json:"unit_max"` // 0 means open-ended
	UnitStep     float64    `json:"unit_step"`
	Presets      StringList `gorm:"type:text" json:"presets"`
	Icon         string     `json:"icon"`
	Color        string     `json:"color"`
	DefaultValue float64    `json:"default_value"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for TrackerDef
func (TrackerDef) TableName() string {
	return "daybook_tracker_defs"
}

// Entity kinds resolvable from a capture
const (
	EntityKindTag    = "tag"
	EntityKindPerson = "person"
	EntityKindPlace  = "place"
)

// ValidEntityKinds returns all valid entity kinds
func ValidEntityKinds() []string {
	return []string{EntityKindTag, EntityKindPerson, EntityKindPlace}
}

// IsValidEntityKind checks if an entity kind is valid
func IsValidEntityKind(kind string) bool {
	for _, valid := range ValidEntityKinds() {
		if kind == valid {
			return true
		}
	}
	return false
}

// Entity represents a canonical tag, person, or place. Unique per
// (kind, normalized key).
type Entity struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"not null;uniqueIndex:idx_entity_kind_key" json:"kind"`
	Key       string    `gorm:"not null;uniqueIndex:idx_entity_kind_key" json:"key"` // normalized
	Label     string    `gorm:"not null" json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Entity
func (Entity) TableName() string {
	return "daybook_entities"
}

// Habit polarities
const (
	HabitPolarityPositive = "positive"
	HabitPolarityNegative = "negative"
	HabitPolarityBoth     = "both"
)

// ValidHabitPolarities returns all valid habit polarities
func ValidHabitPolarities() []string {
	return []string{HabitPolarityPositive, HabitPolarityNegative, HabitPolarityBoth}
}

// IsValidHabitPolarity checks if a habit polarity is valid
func IsValidHabitPolarity(p string) bool {
	for _, valid := range ValidHabitPolarities() {
		if p == valid {
			return true
		}
	}
	return false
}

// HabitDef describes a recurring habit matched against capture text by
// keyword. Completions are materialized as log events tagged #habit.
type HabitDef struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"not null" json:"name"`
	Keywords        StringList `gorm:"type:text" json:"keywords"`
	Tags            StringList `gorm:"type:text" json:"tags"`
	Category        string     `json:"category"`
	Subcategory     string     `json:"subcategory"`
	Importance      int        `json:"importance"`
	Difficulty      int        `json:"difficulty"`
	Polarity        string     `gorm:"default:positive" json:"polarity"`
	EstimateMinutes int        `json:"estimate_minutes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for HabitDef
func (HabitDef) TableName() string {
	return "daybook_habit_defs"
}

// TaxonomyRule is a user-authored classification rule. Match is a regex
// applied to the parsed title; a malformed pattern is skipped, not fatal.
type TaxonomyRule struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Match       string     `gorm:"not null" json:"match"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Tags        StringList `gorm:"type:text" json:"tags"`
	Priority    int        `gorm:"index" json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for TaxonomyRule
func (TaxonomyRule) TableName() string {
	return "daybook_taxonomy_rules"
}

// TaxonomyEntry records every resolved (category, subcategory) pair so the
// user's taxonomy accumulates over time. Upserts are idempotent.
type TaxonomyEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Category    string    `gorm:"not null;uniqueIndex:idx_taxonomy_cat_sub" json:"category"`
	Subcategory string    `gorm:"not null;uniqueIndex:idx_taxonomy_cat_sub" json:"subcategory"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for TaxonomyEntry
func (TaxonomyEntry) TableName() string {
	return "daybook_taxonomy_entries"
}
