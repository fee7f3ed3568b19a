// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"fmt"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/daybook-io/daybook/internal/database"
)

// scoreTrackerKeys are tracker names whose unit is a bounded 1-10 score.
// Anything else gets an open-ended numeric unit.
var scoreTrackerKeys = map[string]bool{
	"mood":    true,
	"energy":  true,
	"stress":  true,
	"pain":    true,
	"focus":   true,
	"anxiety": true,
	"period":  true,
}

// EnsureTrackerDef finds or creates the tracker definition for a key,
// inferring the unit from the key name on first sight.
func (s *Store) EnsureTrackerDef(key string) (*database.TrackerDef, error) {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return nil, fmt.Errorf("tracker key cannot be empty")
	}

	defaults := database.TrackerDef{
		ID:    NewID(),
		Label: titleLabel(normalized),
	}
	if scoreTrackerKeys[normalized] {
		defaults.UnitLabel = "score"
		defaults.UnitMin = 1
		defaults.UnitMax = 10
		defaults.UnitStep = 1
		defaults.DefaultValue = 5
	} else {
		defaults.UnitLabel = "value"
		defaults.UnitStep = 1
	}

	var def database.TrackerDef
	err := s.db.Where("key = ?", normalized).
		Attrs(defaults).
		FirstOrCreate(&def, database.TrackerDef{Key: normalized}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure tracker: %w", err)
	}

	s.cache.Delete(cacheKeyTrackerDefs)
	return &def, nil
}

// ListTrackerDefs returns all tracker definitions.
func (s *Store) ListTrackerDefs() ([]database.TrackerDef, error) {
	if cached, found := s.cache.Get(cacheKeyTrackerDefs); found {
		return cached.([]database.TrackerDef), nil
	}

	var defs []database.TrackerDef
	if err := s.db.Order("key ASC").Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("failed to list trackers: %w", err)
	}

	s.cache.Set(cacheKeyTrackerDefs, defs, gocache.DefaultExpiration)
	return defs, nil
}

// ListTrackerLogs returns the most recent log events for a tracker key,
// newest first.
func (s *Store) ListTrackerLogs(key string, limit int) ([]database.Event, error) {
	if limit < 1 {
		limit = 20
	}
	var events []database.Event
	err := s.db.Where("kind = ? AND tracker_key = ?", database.EventKindLog, strings.ToLower(key)).
		Order("start_at DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tracker logs: %w", err)
	}
	return events, nil
}

// titleLabel turns a tracker key into a display label ("mood" -> "Mood",
// "water_oz" -> "Water Oz").
func titleLabel(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
