// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/daybook-io/daybook/internal/database"
	"github.com/daybook-io/daybook/internal/signal"
	"github.com/daybook-io/daybook/internal/store"
)

// EpisodeMachine advances open-ended conditions (period, pain) from text
// triggers. At most one episode may be open per tracker key.
type EpisodeMachine struct {
	store *store.Store
}

// NewEpisodeMachine creates the episode state machine.
func NewEpisodeMachine(s *store.Store) *EpisodeMachine {
	return &EpisodeMachine{store: s}
}

// EpisodeChange reports one applied transition.
type EpisodeChange struct {
	TrackerKey string
	Action     string // signal.EpisodeOpen or signal.EpisodeClose
	EventID    string
	NoOp       bool // open requested while already open
}

// Apply runs every episode signal against the store. Opening while open
// merges tags into the existing episode instead of creating a duplicate;
// closing while closed is a no-op.
func (m *EpisodeMachine) Apply(signals []signal.EpisodeSignal, rc *RunContext) ([]EpisodeChange, error) {
	var changes []EpisodeChange

	for _, sig := range signals {
		open, err := m.store.FindActiveEpisode(sig.TrackerKey)
		if err != nil {
			return changes, err
		}

		switch sig.Action {
		case signal.EpisodeOpen:
			if open != nil {
				if merged := mergeEpisodeTags(open, sig.Tags); merged {
					if err := m.store.UpsertEvent(open); err != nil {
						return changes, err
					}
				}
				changes = append(changes, EpisodeChange{
					TrackerKey: sig.TrackerKey, Action: sig.Action, EventID: open.ID, NoOp: true,
				})
				continue
			}

			ev, err := m.openEpisode(sig, rc)
			if err != nil {
				return changes, err
			}
			changes = append(changes, EpisodeChange{
				TrackerKey: sig.TrackerKey, Action: sig.Action, EventID: ev.ID,
			})

		case signal.EpisodeClose:
			if open == nil {
				changes = append(changes, EpisodeChange{
					TrackerKey: sig.TrackerKey, Action: sig.Action, NoOp: true,
				})
				continue
			}
			open.Active = false
			open.EndAt = endOfDayMs(rc.AnchorMs)
			if open.EndAt < open.StartAt {
				open.EndAt = open.StartAt
			}
			if err := m.store.UpsertEvent(open); err != nil {
				return changes, err
			}
			changes = append(changes, EpisodeChange{
				TrackerKey: sig.TrackerKey, Action: sig.Action, EventID: open.ID,
			})
		}
	}

	return changes, nil
}

// openEpisode creates the all-day episode event for a tracker key.
func (m *EpisodeMachine) openEpisode(sig signal.EpisodeSignal, rc *RunContext) (*database.Event, error) {
	if _, err := m.store.EnsureTrackerDef(sig.TrackerKey); err != nil {
		return nil, err
	}

	key := sig.TrackerKey
	noteID := rc.NoteID
	ev := &database.Event{
		Title:        episodeTitle(sig.TrackerKey),
		Kind:         database.EventKindEpisode,
		StartAt:      startOfDayMs(rc.AnchorMs),
		EndAt:        endOfDayMs(rc.AnchorMs),
		Active:       true,
		TrackerKey:   &key,
		Category:     "Health",
		Subcategory:  "General",
		Tags:         sig.Tags,
		SourceNoteID: &noteID,
	}
	if sig.Value > 0 {
		ev.Notes = fmt.Sprintf("%s: %g", sig.TrackerKey, sig.Value)
	}

	if err := m.store.CreateEvent(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func mergeEpisodeTags(ev *database.Event, tags []string) bool {
	changed := false
	for _, t := range tags {
		if !ev.Tags.Contains(t) {
			ev.Tags = append(ev.Tags, t)
			changed = true
		}
	}
	return changed
}

func episodeTitle(trackerKey string) string {
	if trackerKey == "" {
		return "Episode"
	}
	return strings.ToUpper(trackerKey[:1]) + trackerKey[1:]
}

// Episode bounds use the anchor's local day.
func startOfDayMs(anchorMs int64) int64 {
	t := time.UnixMilli(anchorMs)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).UnixMilli()
}

func endOfDayMs(anchorMs int64) int64 {
	return startOfDayMs(anchorMs) + 24*60*60*1000 - 1
}
