// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package locking

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = MigrateLocks(db)
	require.NoError(t, err)

	return db
}

func TestAcquireSuccess(t *testing.T) {
	locker := NewLocker(setupTestDB(t))

	acquired, err := locker.Acquire(ScopeCapture, "server-1")
	require.NoError(t, err)
	assert.True(t, acquired)

	isLocked, lockedBy, err := locker.IsLocked(ScopeCapture)
	require.NoError(t, err)
	assert.True(t, isLocked)
	assert.Equal(t, "server-1", lockedBy)
}

func TestAcquireAlreadyHeld(t *testing.T) {
	locker := NewLocker(setupTestDB(t))

	acquired, err := locker.Acquire(ScopeCapture, "server-1")
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, err = locker.Acquire(ScopeCapture, "server-2")
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestAcquireReentrant(t *testing.T) {
	locker := NewLocker(setupTestDB(t))

	acquired, err := locker.Acquire(ScopeCapture, "server-1")
	require.NoError(t, err)
	require.True(t, acquired)

	// Same owner may refresh its own lock.
	acquired, err = locker.Acquire(ScopeCapture, "server-1")
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestAcquireExpiredTakeover(t *testing.T) {
	locker := NewLocker(setupTestDB(t)).WithTTL(-time.Second)

	acquired, err := locker.Acquire(ScopeCapture, "server-1")
	require.NoError(t, err)
	require.True(t, acquired)

	locker.WithTTL(DefaultLockTTL)
	acquired, err = locker.Acquire(ScopeCapture, "server-2")
	require.NoError(t, err)
	assert.True(t, acquired)

	_, lockedBy, err := locker.IsLocked(ScopeCapture)
	require.NoError(t, err)
	assert.Equal(t, "server-2", lockedBy)
}

func TestReleaseOnlyByOwner(t *testing.T) {
	locker := NewLocker(setupTestDB(t))

	acquired, err := locker.Acquire(ScopeCapture, "server-1")
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, locker.Release(ScopeCapture, "server-2"))
	isLocked, _, err := locker.IsLocked(ScopeCapture)
	require.NoError(t, err)
	assert.True(t, isLocked)

	require.NoError(t, locker.Release(ScopeCapture, "server-1"))
	isLocked, _, err = locker.IsLocked(ScopeCapture)
	require.NoError(t, err)
	assert.False(t, isLocked)
}

func TestExtendRequiresOwnership(t *testing.T) {
	locker := NewLocker(setupTestDB(t))

	acquired, err := locker.Acquire(ScopeCapture, "server-1")
	require.NoError(t, err)
	require.True(t, acquired)

	err = locker.Extend(ScopeCapture, "server-2")
	var lockErr *LockError
	require.ErrorAs(t, err, &lockErr)

	assert.NoError(t, locker.Extend(ScopeCapture, "server-1"))
}

func TestCleanupExpired(t *testing.T) {
	locker := NewLocker(setupTestDB(t)).WithTTL(-time.Second)

	acquired, err := locker.Acquire(ScopeCapture, "server-1")
	require.NoError(t, err)
	require.True(t, acquired)

	removed, err := locker.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestWithLockReleasesAfterRun(t *testing.T) {
	locker := NewLocker(setupTestDB(t))

	ran := false
	err := locker.WithLock(ScopeCapture, "server-1", func() error {
		ran = true
		isLocked, _, err := locker.IsLocked(ScopeCapture)
		require.NoError(t, err)
		assert.True(t, isLocked)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	isLocked, _, err := locker.IsLocked(ScopeCapture)
	require.NoError(t, err)
	assert.False(t, isLocked)
}

func TestWithLockBusy(t *testing.T) {
	locker := NewLocker(setupTestDB(t))

	acquired, err := locker.Acquire(ScopeCapture, "server-1")
	require.NoError(t, err)
	require.True(t, acquired)

	err = locker.WithLock(ScopeCapture, "server-2", func() error {
		t.Fatal("should not run while lock is held")
		return nil
	})
	var lockErr *LockError
	assert.ErrorAs(t, err, &lockErr)
}
