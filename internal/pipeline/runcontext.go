// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pipeline turns one capture into persisted records: it splits the
// preamble, extracts signals, picks a parse strategy, merges fragmented
// events, advances episode state, and materializes everything against the
// record store under the active-session and dedupe invariants.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/daybook-io/daybook/internal/database"
)

// dedupeQuantumMs quantizes dedupe-key times to 5 minutes.
const dedupeQuantumMs = 5 * 60 * 1000

// RunContext is the short-lived state of one capture pass: the dedupe key
// sets shared by every materialization path and the entities resolved so
// far. It is created at pipeline start and discarded at the end.
type RunContext struct {
	NoteID   string
	AnchorMs int64

	eventKeys   map[string]bool
	taskKeys    map[string]bool
	trackerKeys map[string]bool

	entityIDs map[string]string // "kind|key" -> entity id
	Rules     []database.TaxonomyRule
}

// NewRunContext starts a capture pass.
func NewRunContext(noteID string, anchorMs int64) *RunContext {
	return &RunContext{
		NoteID:      noteID,
		AnchorMs:    anchorMs,
		eventKeys:   make(map[string]bool),
		taskKeys:    make(map[string]bool),
		trackerKeys: make(map[string]bool),
		entityIDs:   make(map[string]string),
	}
}

// ClaimEventKey records an event dedupe key, returning false when it was
// already claimed in this pass.
func (rc *RunContext) ClaimEventKey(title string, startMs int64, durationMs int64) bool {
	key := EventDedupeKey(title, startMs, durationMs)
	if rc.eventKeys[key] {
		return false
	}
	rc.eventKeys[key] = true
	return true
}

// ClaimTaskKey records a task dedupe key.
func (rc *RunContext) ClaimTaskKey(title string) bool {
	key := normalizeTitle(title)
	if rc.taskKeys[key] {
		return false
	}
	rc.taskKeys[key] = true
	return true
}

// ClaimTrackerKey records a tracker-log dedupe key so locally extracted
// logs and parser-generated logs are not doubled.
func (rc *RunContext) ClaimTrackerKey(trackerKey string, atMs int64) bool {
	key := fmt.Sprintf("%s@%d", trackerKey, quantize(atMs))
	if rc.trackerKeys[key] {
		return false
	}
	rc.trackerKeys[key] = true
	return true
}

// RememberEntity caches a resolved entity id for this pass.
func (rc *RunContext) RememberEntity(kind, key, id string) {
	rc.entityIDs[kind+"|"+strings.ToLower(key)] = id
}

// EntityID returns a previously resolved entity id.
func (rc *RunContext) EntityID(kind, key string) (string, bool) {
	id, ok := rc.entityIDs[kind+"|"+strings.ToLower(key)]
	return id, ok
}

// EntityIDs returns every entity id resolved during this pass.
func (rc *RunContext) EntityIDs() []string {
	ids := make([]string, 0, len(rc.entityIDs))
	seen := make(map[string]bool, len(rc.entityIDs))
	for _, id := range rc.entityIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// EventDedupeKey builds the composite key that prevents materializing two
// materially identical events in one pass.
func EventDedupeKey(title string, startMs, durationMs int64) string {
	return fmt.Sprintf("%s@%d+%d", normalizeTitle(title), quantize(startMs), quantize(durationMs))
}

func quantize(ms int64) int64 {
	if ms < 0 {
		ms -= dedupeQuantumMs - 1
	}
	return ms / dedupeQuantumMs
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
