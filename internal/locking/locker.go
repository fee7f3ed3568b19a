// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package locking

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ScopeCapture is the lock scope held while a capture is processed.
const ScopeCapture = "capture"

// DefaultLockTTL is the default time-to-live for locks
const DefaultLockTTL = 2 * time.Minute

// Locker manages TTL locks for pipeline scopes
type Locker struct {
	db      *gorm.DB
	lockTTL time.Duration
}

// NewLocker creates a new locker instance
func NewLocker(db *gorm.DB) *Locker {
	return &Locker{
		db:      db,
		lockTTL: DefaultLockTTL,
	}
}

// WithTTL sets a custom TTL for locks
func (l *Locker) WithTTL(ttl time.Duration) *Locker {
	l.lockTTL = ttl
	return l
}

// Acquire attempts to acquire a lock for a scope.
// Returns true if the lock was acquired, false if another owner holds it.
func (l *Locker) Acquire(scope, owner string) (bool, error) {
	now := time.Now()
	expiresAt := now.Add(l.lockTTL)

	var existing CaptureLock
	err := l.db.Where("scope = ?", scope).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return false, fmt.Errorf("failed to read lock: %w", err)
		}
		lock := CaptureLock{
			Scope:     scope,
			Version:   1,
			LockedBy:  owner,
			LockedAt:  now,
			ExpiresAt: expiresAt,
		}
		if err := l.db.Create(&lock).Error; err != nil {
			// Another process created the row between our read and write.
			return false, nil
		}
		return true, nil
	}

	if !existing.IsExpired() && existing.LockedBy != owner {
		return false, nil
	}

	// Take over an expired lock, or refresh our own. The version guard
	// keeps two takers from both believing they won.
	result := l.db.Model(&CaptureLock{}).
		Where("scope = ? AND version = ?", scope, existing.Version).
		Updates(map[string]interface{}{
			"locked_by":  owner,
			"locked_at":  now,
			"expires_at": expiresAt,
			"version":    existing.Version + 1,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Release releases a lock held by the specified owner
func (l *Locker) Release(scope, owner string) error {
	result := l.db.Where("scope = ? AND locked_by = ?", scope, owner).
		Delete(&CaptureLock{})
	return result.Error
}

// IsLocked checks if a scope is currently locked
func (l *Locker) IsLocked(scope string) (bool, string, error) {
	var lock CaptureLock
	err := l.db.Where("scope = ?", scope).First(&lock).Error
	if err != nil {
		return false, "", nil
	}
	if lock.IsExpired() {
		return false, "", nil
	}
	return true, lock.LockedBy, nil
}

// Extend extends the TTL of an existing lock
func (l *Locker) Extend(scope, owner string) error {
	expiresAt := time.Now().Add(l.lockTTL)

	result := l.db.Model(&CaptureLock{}).
		Where("scope = ? AND locked_by = ?", scope, owner).
		Update("expires_at", expiresAt)

	if result.RowsAffected == 0 {
		return &LockError{
			Scope:    scope,
			LockedBy: owner,
			Message:  "lock not found or owned by different process",
		}
	}

	return result.Error
}

// CleanupExpired removes all expired locks
func (l *Locker) CleanupExpired() (int64, error) {
	result := l.db.Where("expires_at < ?", time.Now()).Delete(&CaptureLock{})
	return result.RowsAffected, result.Error
}

// WithLock executes a function while holding a lock
// Automatically releases the lock after execution
func (l *Locker) WithLock(scope, owner string, fn func() error) error {
	acquired, err := l.Acquire(scope, owner)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return &LockError{
			Scope:   scope,
			Message: "capture pipeline is busy, try again shortly",
		}
	}

	defer l.Release(scope, owner) //nolint:errcheck

	return fn()
}
