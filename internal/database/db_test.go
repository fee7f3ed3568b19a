// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestConnect_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	cfg := &Config{
		Type:       "sqlite",
		SQLitePath: dbPath,
		LogLevel:   logger.Silent,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)

	err = Ping(db)
	assert.NoError(t, err)

	err = Close(db)
	assert.NoError(t, err)
}

func TestConnect_InvalidType(t *testing.T) {
	cfg := &Config{
		Type:     "mysql",
		LogLevel: logger.Silent,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestEnsureSQLiteDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "another", "test.db")

	err := ensureSQLiteDir(dbPath)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureSQLiteDir_Memory(t *testing.T) {
	assert.NoError(t, ensureSQLiteDir(":memory:"))
}

func TestMigrate(t *testing.T) {
	cfg := &Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:   logger.Silent,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer Close(db) //nolint:errcheck

	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"daybook_notes",
		"daybook_events",
		"daybook_tasks",
		"daybook_tracker_defs",
		"daybook_entities",
		"daybook_habit_defs",
		"daybook_taxonomy_rules",
		"daybook_taxonomy_entries",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
