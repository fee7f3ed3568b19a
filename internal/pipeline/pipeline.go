// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/daybook-io/daybook/internal/capture"
	"github.com/daybook-io/daybook/internal/database"
	"github.com/daybook-io/daybook/internal/parser"
	"github.com/daybook-io/daybook/internal/signal"
	"github.com/daybook-io/daybook/internal/store"
)

// maxErrorLength bounds user-visible parse error messages.
const maxErrorLength = 200

// Pipeline processes captures end to end. Runs are serialized: the
// active-session and episode invariants depend on no two passes
// interleaving over the same store.
type Pipeline struct {
	mu       sync.Mutex
	store    *store.Store
	selector *parser.Selector
	machine  *EpisodeMachine
	mat      *Materializer
}

// New creates a capture pipeline.
func New(s *store.Store, selector *parser.Selector) *Pipeline {
	return &Pipeline{
		store:    s,
		selector: selector,
		machine:  NewEpisodeMachine(s),
		mat:      NewMaterializer(s),
	}
}

// Report summarizes what one capture pass materialized.
type Report struct {
	NoteID          string          `json:"note_id"`
	Strategy        string          `json:"strategy,omitempty"`
	EventsCreated   int             `json:"events_created"`
	TasksCreated    int             `json:"tasks_created"`
	TasksReused     int             `json:"tasks_reused"`
	LogsCreated     int             `json:"logs_created"`
	MealsCreated    int             `json:"meals_created"`
	WorkoutsCreated int             `json:"workouts_created"`
	HabitsCompleted int             `json:"habits_completed"`
	EpisodeChanges  []EpisodeChange `json:"episode_changes,omitempty"`
	ParseError      string          `json:"parse_error,omitempty"`
}

// Run ingests one new capture.
func (p *Pipeline) Run(ctx context.Context, text string, anchorMs int64) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.selector.Preflight(); err != nil {
		return nil, err
	}

	capt := capture.Parse(text, anchorMs)
	note := &database.Note{Body: text, CapturedAt: anchorMs}
	if err := p.store.CreateNote(note); err != nil {
		return nil, err
	}

	rc := NewRunContext(note.ID, anchorMs)
	return p.process(ctx, capt, rc)
}

// Reprocess re-runs the pipeline for an existing capture. Records already
// materialized from it seed the dedupe keys, so a second pass over the
// same note creates nothing twice.
func (p *Pipeline) Reprocess(ctx context.Context, noteID string) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.selector.Preflight(); err != nil {
		return nil, err
	}

	note, err := p.store.GetNote(noteID)
	if err != nil {
		return nil, err
	}

	capt := capture.Parse(note.Body, note.CapturedAt)
	rc := NewRunContext(note.ID, note.CapturedAt)
	if err := p.seedDedupeKeys(rc); err != nil {
		return nil, err
	}
	return p.process(ctx, capt, rc)
}

// process runs the shared pipeline body. Earlier materializations stay
// committed even when a later step errors; there is no rollback.
func (p *Pipeline) process(ctx context.Context, capt *capture.Capture, rc *RunContext) (*Report, error) {
	report := &Report{NoteID: rc.NoteID}

	rules, err := p.store.LoadTaxonomyRules()
	if err != nil {
		return report, err
	}
	rc.Rules = rules

	signals := signal.Extract(capt.Body)

	changes, err := p.machine.Apply(signal.ExtractEpisodeSignals(capt.Body), rc)
	report.EpisodeChanges = changes
	if err != nil {
		return report, err
	}

	// Tracker logs apply regardless of which parser runs, and survive a
	// later parse failure.
	logs, err := p.mat.ApplyTrackerLogs(signals, rc)
	report.LogsCreated = logs
	if err != nil {
		return report, err
	}

	habits, err := p.store.ListHabitDefs()
	if err != nil {
		return report, err
	}
	completed, err := p.mat.ApplyHabits(capt.Body, habits, rc)
	report.HabitsCompleted = completed
	if err != nil {
		return report, err
	}

	result, strategy, err := p.selector.Run(ctx, capt.Body, rc.AnchorMs)
	report.Strategy = strategy
	if err != nil {
		report.ParseError = truncateError(err)
		return report, fmt.Errorf("capture parse failed: %w", err)
	}
	if result.Empty() {
		log.Printf("Capture %s parsed to nothing (%s strategy)", rc.NoteID, strategy)
	}

	events := MergeUntimedEvents(result.Events, signals)
	events = GroupWorkBlocks(events)

	var activeEventID *string
	for _, item := range events {
		ev, created, err := p.mat.MaterializeEvent(item, capt.Overrides, signals, rc)
		if err != nil {
			return report, err
		}
		if created {
			if ev.Kind == database.EventKindLog {
				report.LogsCreated++
				continue
			}
			report.EventsCreated++
			if ev.Active {
				activeEventID = &ev.ID
			}
		}
	}

	for _, item := range result.Tasks {
		_, created, err := p.mat.MaterializeTask(item, capt.Overrides, rc, activeEventID)
		if err != nil {
			return report, err
		}
		if created {
			report.TasksCreated++
		} else {
			report.TasksReused++
		}
	}

	for _, meal := range result.Meals {
		_, created, err := p.mat.MaterializeMeal(meal, rc)
		if err != nil {
			return report, err
		}
		if created {
			report.MealsCreated++
		}
	}
	for _, workout := range result.Workouts {
		_, created, err := p.mat.MaterializeWorkout(workout, rc)
		if err != nil {
			return report, err
		}
		if created {
			report.WorkoutsCreated++
		}
	}

	if err := p.store.AppendNoteEntityIDs(rc.NoteID, rc.EntityIDs()); err != nil {
		return report, err
	}

	return report, nil
}

// seedDedupeKeys claims the keys of records already derived from the note.
func (p *Pipeline) seedDedupeKeys(rc *RunContext) error {
	events, err := p.store.ListEventsBySourceNote(rc.NoteID)
	if err != nil {
		return err
	}
	for i := range events {
		ev := &events[i]
		rc.ClaimEventKey(ev.Title, ev.StartAt, ev.EndAt-ev.StartAt)
		if ev.Kind == database.EventKindEvent {
			// An untimed capture resolves to a zero-length window, so a
			// session stopped since its pass must also claim that key or
			// reprocessing the note would materialize it again.
			rc.ClaimEventKey(ev.Title, ev.StartAt, 0)
		}
		if ev.Kind == database.EventKindLog && ev.TrackerKey != nil {
			rc.ClaimTrackerKey(*ev.TrackerKey, ev.StartAt)
		}
	}

	tasks, err := p.store.ListTasksBySourceNote(rc.NoteID)
	if err != nil {
		return err
	}
	for i := range tasks {
		rc.ClaimTaskKey(tasks[i].Title)
	}
	return nil
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorLength {
		msg = msg[:maxErrorLength] + "..."
	}
	return msg
}
