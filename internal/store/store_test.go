// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/daybook-io/daybook/internal/database"
)

func setupTestStore(t *testing.T) *Store {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = database.Migrate(db)
	require.NoError(t, err)

	return NewStore(db)
}

func TestCreateEventAssignsID(t *testing.T) {
	s := setupTestStore(t)

	ev := &database.Event{Title: "Walk", StartAt: 1000, EndAt: 2000}
	require.NoError(t, s.CreateEvent(ev))
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, database.EventKindEvent, ev.Kind)
}

func TestCreateEventRejectsUnknownKind(t *testing.T) {
	s := setupTestStore(t)

	err := s.CreateEvent(&database.Event{Title: "Walk", Kind: "meeting"})
	assert.Error(t, err)
}

func TestListEventsInvalidatedOnWrite(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.CreateEvent(&database.Event{Title: "A", StartAt: 1000}))
	events, err := s.ListEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, s.CreateEvent(&database.Event{Title: "B", StartAt: 2000}))
	events, err = s.ListEvents()
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestStopActiveSessionsExceptClampsEnd(t *testing.T) {
	s := setupTestStore(t)

	running := &database.Event{Title: "Focus", StartAt: 5000, Active: true}
	require.NoError(t, s.CreateEvent(running))

	// Stop time before the running session started
	require.NoError(t, s.StopActiveSessionsExcept("other-id", 1000))

	stopped, err := s.GetEvent(running.ID)
	require.NoError(t, err)
	assert.False(t, stopped.Active)
	assert.GreaterOrEqual(t, stopped.EndAt, stopped.StartAt)
}

func TestStopActiveSessionsSkipsLogsAndEpisodes(t *testing.T) {
	s := setupTestStore(t)

	key := "period"
	episode := &database.Event{Title: "Period", Kind: database.EventKindEpisode, Active: true, TrackerKey: &key, StartAt: 1000}
	require.NoError(t, s.CreateEvent(episode))

	require.NoError(t, s.StopActiveSessionsExcept("", 9000))

	got, err := s.GetEvent(episode.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestFindActiveEpisodeByTrackerKey(t *testing.T) {
	s := setupTestStore(t)

	key := "pain"
	require.NoError(t, s.CreateEvent(&database.Event{
		Title: "Pain", Kind: database.EventKindEpisode, Active: true, TrackerKey: &key, StartAt: 1000,
	}))

	found, err := s.FindActiveEpisode("pain")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Pain", found.Title)

	none, err := s.FindActiveEpisode("period")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFindBestActiveEventAtPrefersActive(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.CreateEvent(&database.Event{Title: "Old", StartAt: 1000, EndAt: 9000}))
	require.NoError(t, s.CreateEvent(&database.Event{Title: "Now", StartAt: 2000, Active: true}))

	best, err := s.FindBestActiveEventAt(5000)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "Now", best.Title)
}

func TestFindBestActiveEventAtFallsBackToCoveringWindow(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.CreateEvent(&database.Event{Title: "Lunch", StartAt: 1000, EndAt: 9000}))

	best, err := s.FindBestActiveEventAt(5000)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "Lunch", best.Title)

	none, err := s.FindBestActiveEventAt(20000)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestEnsureEntityIdempotent(t *testing.T) {
	s := setupTestStore(t)

	first, err := s.EnsureEntity(database.EntityKindPerson, "Sam", "Sam")
	require.NoError(t, err)

	second, err := s.EnsureEntity(database.EntityKindPerson, "sam", "Sam")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	s.DB().Model(&database.Entity{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnsureEntityRejectsUnknownKind(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.EnsureEntity("animal", "rex", "Rex")
	assert.Error(t, err)
}

func TestEnsureTrackerDefInfersScoreUnit(t *testing.T) {
	s := setupTestStore(t)

	def, err := s.EnsureTrackerDef("Mood")
	require.NoError(t, err)
	assert.Equal(t, "mood", def.Key)
	assert.Equal(t, "Mood", def.Label)
	assert.Equal(t, 1.0, def.UnitMin)
	assert.Equal(t, 10.0, def.UnitMax)
}

func TestEnsureTrackerDefOpenEndedUnit(t *testing.T) {
	s := setupTestStore(t)

	def, err := s.EnsureTrackerDef("water_oz")
	require.NoError(t, err)
	assert.Equal(t, "Water Oz", def.Label)
	assert.Equal(t, 0.0, def.UnitMax)
}

func TestEnsureTrackerDefIdempotent(t *testing.T) {
	s := setupTestStore(t)

	first, err := s.EnsureTrackerDef("mood")
	require.NoError(t, err)
	second, err := s.EnsureTrackerDef("mood")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestTaskTokenLookup(t *testing.T) {
	s := setupTestStore(t)

	task := &database.Task{Title: "Buy milk", ItemToken: "tok-1"}
	require.NoError(t, s.CreateTask(task))

	found, err := s.FindTaskByToken("tok-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, task.ID, found.ID)

	none, err := s.FindTaskByToken("tok-2")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTaskTitleLookupUnderParent(t *testing.T) {
	s := setupTestStore(t)

	parent := "evt-1"
	require.NoError(t, s.CreateTask(&database.Task{Title: "Buy milk", ParentEventID: &parent}))

	found, err := s.FindTaskByTitleUnderParent("Buy milk", &parent)
	require.NoError(t, err)
	require.NotNil(t, found)

	other := "evt-2"
	none, err := s.FindTaskByTitleUnderParent("Buy milk", &other)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRecordTaxonomyPairIdempotent(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.RecordTaxonomyPair("Work", "Clinic"))
	require.NoError(t, s.RecordTaxonomyPair("Work", "Clinic"))
	require.NoError(t, s.RecordTaxonomyPair("Work", "Meeting"))

	entries, err := s.ListTaxonomyEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLoadTaxonomyRulesOrderedByPriority(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.CreateTaxonomyRule(&database.TaxonomyRule{Match: "clinic", Category: "Work", Priority: 1}))
	require.NoError(t, s.CreateTaxonomyRule(&database.TaxonomyRule{Match: "urgent", Category: "Health", Priority: 5}))

	rules, err := s.LoadTaxonomyRules()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "urgent", rules[0].Match)
}

func TestAppendNoteEntityIDsDeduplicates(t *testing.T) {
	s := setupTestStore(t)

	note := &database.Note{Body: "walked with Sam", CapturedAt: 1000}
	require.NoError(t, s.CreateNote(note))

	require.NoError(t, s.AppendNoteEntityIDs(note.ID, []string{"e1", "e2"}))
	require.NoError(t, s.AppendNoteEntityIDs(note.ID, []string{"e2", "e3"}))

	got, err := s.GetNote(note.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StringList{"e1", "e2", "e3"}, got.EntityIDs)
}
