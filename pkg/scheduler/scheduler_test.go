// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/daybook-io/daybook/internal/config"
	"github.com/daybook-io/daybook/internal/database"
	"github.com/daybook-io/daybook/internal/store"
)

func setupTestScheduler(t *testing.T) (*Scheduler, *store.Store) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	st := store.NewStore(db)
	cfg := config.SchedulerConfig{
		SweepInterval:      15,
		SessionIdleMinutes: 480,
		EpisodeMaxOpenDays: 30,
	}
	return NewScheduler(st, cfg), st
}

func TestSweepStopsIdleSession(t *testing.T) {
	sched, st := setupTestScheduler(t)

	now := time.Now()
	startAt := now.Add(-10 * time.Hour).UnixMilli()
	session := &database.Event{
		Title:   "Writing essay",
		StartAt: startAt,
		Active:  true,
	}
	require.NoError(t, st.CreateEvent(session))

	sched.Sweep(now)

	got, err := st.GetEvent(session.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	// Ends at start + idle limit, not at the sweep moment.
	assert.Equal(t, startAt+(480*time.Minute).Milliseconds(), got.EndAt)
}

func TestSweepLeavesRecentSessionAlone(t *testing.T) {
	sched, st := setupTestScheduler(t)

	now := time.Now()
	session := &database.Event{
		Title:   "Reading",
		StartAt: now.Add(-time.Hour).UnixMilli(),
		Active:  true,
	}
	require.NoError(t, st.CreateEvent(session))

	sched.Sweep(now)

	got, err := st.GetEvent(session.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestSweepClosesStaleEpisode(t *testing.T) {
	sched, st := setupTestScheduler(t)

	now := time.Now()
	key := "sick"
	episode := &database.Event{
		Title:      "Sick",
		Kind:       database.EventKindEpisode,
		StartAt:    now.Add(-31 * 24 * time.Hour).UnixMilli(),
		Active:     true,
		TrackerKey: &key,
	}
	require.NoError(t, st.CreateEvent(episode))

	sched.Sweep(now)

	got, err := st.GetEvent(episode.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, now.UnixMilli(), got.EndAt)
}

func TestSweepLeavesYoungEpisodeOpen(t *testing.T) {
	sched, st := setupTestScheduler(t)

	now := time.Now()
	key := "travel"
	episode := &database.Event{
		Title:      "Traveling",
		Kind:       database.EventKindEpisode,
		StartAt:    now.Add(-2 * 24 * time.Hour).UnixMilli(),
		Active:     true,
		TrackerKey: &key,
	}
	require.NoError(t, st.CreateEvent(episode))

	sched.Sweep(now)

	got, err := st.GetEvent(episode.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestSweepIgnoresLogs(t *testing.T) {
	sched, st := setupTestScheduler(t)

	now := time.Now()
	ts := now.Add(-10 * time.Hour).UnixMilli()
	logEvent := &database.Event{
		Title:   "mood: 7",
		Kind:    database.EventKindLog,
		StartAt: ts,
		EndAt:   ts,
		Active:  true,
	}
	require.NoError(t, st.CreateEvent(logEvent))

	sched.Sweep(now)

	got, err := st.GetEvent(logEvent.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}
