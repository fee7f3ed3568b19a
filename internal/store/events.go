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

// CreateEvent persists a new event.
func (s *Store) CreateEvent(event *database.Event) error {
	if event.ID == "" {
		event.ID = NewID()
	}
	if event.Kind == "" {
		event.Kind = database.EventKindEvent
	}
	if !database.IsValidEventKind(event.Kind) {
		return fmt.Errorf("invalid event kind: %s", event.Kind)
	}

	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	s.cache.Delete(cacheKeyEvents)
	return nil
}

// UpsertEvent saves all fields of an existing event.
func (s *Store) UpsertEvent(event *database.Event) error {
	if event.ID == "" {
		return s.CreateEvent(event)
	}
	if err := s.db.Save(event).Error; err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}
	s.cache.Delete(cacheKeyEvents)
	return nil
}

// DeleteEvent soft-deletes an event by id.
func (s *Store) DeleteEvent(id string) error {
	result := s.db.Delete(&database.Event{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event not found: %s", id)
	}
	s.cache.Delete(cacheKeyEvents)
	return nil
}

// GetEvent retrieves an event by id.
func (s *Store) GetEvent(id string) (*database.Event, error) {
	var event database.Event
	if err := s.db.First(&event, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// ListEvents returns all events ordered by start time. The result is
// cached briefly; writes through this store invalidate it.
func (s *Store) ListEvents() ([]database.Event, error) {
	if cached, found := s.cache.Get(cacheKeyEvents); found {
		return cached.([]database.Event), nil
	}

	var events []database.Event
	if err := s.db.Order("start_at ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	s.cache.Set(cacheKeyEvents, events, 0)
	return events, nil
}

// ListEventsBetween returns events overlapping [startMs, endMs).
func (s *Store) ListEventsBetween(startMs, endMs int64) ([]database.Event, error) {
	var events []database.Event
	err := s.db.Where("start_at < ? AND (end_at = 0 OR end_at >= ?)", endMs, startMs).
		Order("start_at ASC").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// ListEventsBySourceNote returns every event derived from a capture.
func (s *Store) ListEventsBySourceNote(noteID string) ([]database.Event, error) {
	var events []database.Event
	if err := s.db.Where("source_note_id = ?", noteID).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events for note: %w", err)
	}
	return events, nil
}

// FindActiveEpisode returns the open episode for a tracker key, or nil
// when none is open.
func (s *Store) FindActiveEpisode(trackerKey string) (*database.Event, error) {
	var event database.Event
	err := s.db.Where("kind = ? AND active = ? AND tracker_key = ?",
		database.EventKindEpisode, true, trackerKey).
		Order("start_at DESC").First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active episode: %w", err)
	}
	return &event, nil
}

// ListActiveSessions returns every active non-log, non-episode event.
// The invariant keeps this at one; the slice form lets the caller repair
// violations instead of erroring on them.
func (s *Store) ListActiveSessions() ([]database.Event, error) {
	var events []database.Event
	err := s.db.Where("active = ? AND kind NOT IN ?",
		true, []string{database.EventKindLog, database.EventKindEpisode}).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return events, nil
}

// ListActiveEpisodes returns every open episode across all tracker keys.
func (s *Store) ListActiveEpisodes() ([]database.Event, error) {
	var events []database.Event
	err := s.db.Where("kind = ? AND active = ?",
		database.EventKindEpisode, true).
		Order("start_at ASC").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active episodes: %w", err)
	}
	return events, nil
}

// StopEvent marks an event inactive with the given end time, clamped so
// it never precedes the start.
func (s *Store) StopEvent(id string, endMs int64) error {
	event, err := s.GetEvent(id)
	if err != nil {
		return err
	}
	if endMs < event.StartAt {
		endMs = event.StartAt
	}
	if err := s.db.Model(event).Updates(map[string]interface{}{
		"active": false,
		"end_at": endMs,
	}).Error; err != nil {
		return fmt.Errorf("failed to stop event %s: %w", id, err)
	}
	s.cache.Delete(cacheKeyEvents)
	return nil
}

// StopActiveSessionsExcept stops every active session other than exceptID,
// clamping the end time so it never precedes the start.
func (s *Store) StopActiveSessionsExcept(exceptID string, stopMs int64) error {
	sessions, err := s.ListActiveSessions()
	if err != nil {
		return err
	}

	for i := range sessions {
		ev := &sessions[i]
		if ev.ID == exceptID {
			continue
		}
		ev.Active = false
		ev.EndAt = stopMs
		if ev.EndAt < ev.StartAt {
			ev.EndAt = ev.StartAt
		}
		if err := s.db.Model(ev).Updates(map[string]interface{}{
			"active": false,
			"end_at": ev.EndAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to stop session %s: %w", ev.ID, err)
		}
	}

	if len(sessions) > 0 {
		s.cache.Delete(cacheKeyEvents)
	}
	return nil
}

// FindBestActiveEventAt returns the session that was running at the given
// moment: the latest-started active session whose window covers it, else
// the latest-started session whose time window covers it, else nil. Logs
// attach to this event rather than to whatever the capture is nominally
// about.
func (s *Store) FindBestActiveEventAt(ms int64) (*database.Event, error) {
	var event database.Event
	err := s.db.Where("active = ? AND kind NOT IN ? AND start_at <= ?",
		true, []string{database.EventKindLog, database.EventKindEpisode}, ms).
		Order("start_at DESC").First(&event).Error
	if err == nil {
		return &event, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find active event: %w", err)
	}

	err = s.db.Where("kind NOT IN ? AND start_at <= ? AND end_at >= ?",
		[]string{database.EventKindLog, database.EventKindEpisode}, ms, ms).
		Order("start_at DESC").First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find covering event: %w", err)
	}
	return &event, nil
}
