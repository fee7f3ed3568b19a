// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package locking

import (
	"time"

	"gorm.io/gorm"
)

// CaptureLock represents a TTL lock on a pipeline scope. Locks serialize
// capture ingestion across server processes sharing one database.
type CaptureLock struct {
	Scope     string    `gorm:"primaryKey" json:"scope"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	LockedBy  string    `gorm:"not null" json:"locked_by"`
	LockedAt  time.Time `gorm:"not null" json:"locked_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// TableName specifies the table name for CaptureLock
func (CaptureLock) TableName() string {
	return "capture_locks"
}

// MigrateLocks runs migrations for the capture_locks table
func MigrateLocks(db *gorm.DB) error {
	return db.AutoMigrate(&CaptureLock{})
}

// IsExpired returns true if the lock has expired
func (l *CaptureLock) IsExpired() bool {
	return time.Now().After(l.ExpiresAt)
}

// LockError represents a locking failure
type LockError struct {
	Scope    string
	LockedBy string
	Message  string
}

func (e *LockError) Error() string {
	return e.Message
}
