// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/daybook-io/daybook/internal/capture"
	"github.com/daybook-io/daybook/internal/database"
	"github.com/daybook-io/daybook/internal/estimate"
	"github.com/daybook-io/daybook/internal/parser"
	"github.com/daybook-io/daybook/internal/signal"
	"github.com/daybook-io/daybook/internal/store"
	"github.com/daybook-io/daybook/internal/taxonomy"
)

// Materializer converts parsed and extracted items into persisted records.
// It owns the two hard invariants: active-session exclusivity and the
// per-pass dedupe keys shared by every code path.
type Materializer struct {
	store *store.Store
}

// NewMaterializer creates a materializer over the record store.
func NewMaterializer(s *store.Store) *Materializer {
	return &Materializer{store: s}
}

// ApplyTrackerLogs materializes every tracker reading in the capture,
// regardless of which parser ran. Explicit tokens and inferred readings
// log at the anchor; when two or more mood mentions exist, each mention
// logs at its hinted moment (start of the activity vs. now) instead of
// the single inferred reading.
func (m *Materializer) ApplyTrackerLogs(signals *signal.Set, rc *RunContext) (int, error) {
	type reading struct {
		key   string
		value float64
		atMs  int64
	}
	var readings []reading

	for _, tok := range signals.Trackers {
		readings = append(readings, reading{tok.Key, tok.Value, rc.AnchorMs})
	}

	twoMoodPoints := len(signals.MoodMentions) >= 2
	for _, r := range signals.Readings {
		if twoMoodPoints && r.Key == "mood" {
			continue
		}
		readings = append(readings, reading{r.Key, r.Value, rc.AnchorMs})
	}
	if twoMoodPoints {
		startMs := rc.AnchorMs - int64(defaultSessionMinutes(signals))*60*1000
		for _, mm := range signals.MoodMentions {
			at := rc.AnchorMs
			if mm.Hint == signal.HintStart {
				at = startMs
			}
			readings = append(readings, reading{"mood", mm.Value, at})
		}
	}

	created := 0
	for _, r := range readings {
		if !rc.ClaimTrackerKey(r.key, r.atMs) {
			continue
		}
		if _, err := m.store.EnsureTrackerDef(r.key); err != nil {
			return created, err
		}
		if _, err := m.createLog(fmt.Sprintf("%s: %g", r.key, r.value), r.key, r.atMs, rc); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// createLog persists a log event parented to whatever session was running
// at its timestamp.
func (m *Materializer) createLog(title, trackerKey string, atMs int64, rc *RunContext) (*database.Event, error) {
	noteID := rc.NoteID
	ev := &database.Event{
		Title:        title,
		Kind:         database.EventKindLog,
		StartAt:      atMs,
		EndAt:        atMs,
		SourceNoteID: &noteID,
	}
	if trackerKey != "" {
		key := trackerKey
		ev.TrackerKey = &key
		ev.Tags = database.StringList{trackerKey}
	}

	parent, err := m.store.FindBestActiveEventAt(atMs)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		ev.ParentEventID = &parent.ID
	}

	if err := m.store.CreateEvent(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// MaterializeEvent persists one parsed event. Returns false when the
// dedupe key was already claimed in this pass. Items the parser labeled as
// logs become log records; episode items are dropped, since episode state
// advances only through the episode machine.
func (m *Materializer) MaterializeEvent(item parser.Item, ov capture.Overrides, signals *signal.Set, rc *RunContext) (*database.Event, bool, error) {
	switch item.Kind {
	case parser.KindLog:
		return m.materializeItemLog(&item, rc)
	case parser.KindEpisode:
		return nil, false, nil
	}

	tags := unionStrings(item.Tags, ov.Tags)

	class := taxonomy.Classify(taxonomy.Input{
		Title:               item.Title,
		Tags:                tags,
		OverrideCategory:    ov.Category,
		OverrideSubcategory: ov.Subcategory,
		CurrentCategory:     item.Category,
		CurrentSubcategory:  item.Subcategory,
		Rules:               rc.Rules,
	})
	tags = unionStrings(tags, class.ExtraTags)

	startMs, endMs, active := resolveEventWindow(&item, signals, rc.AnchorMs)
	if !rc.ClaimEventKey(item.Title, startMs, endMs-startMs) {
		return nil, false, nil
	}

	noteID := rc.NoteID
	ev := &database.Event{
		Title:        item.Title,
		Kind:         database.EventKindEvent,
		StartAt:      startMs,
		EndAt:        endMs,
		Active:       active,
		Category:     class.Category,
		Subcategory:  class.Subcategory,
		Importance:   firstNonZero(ov.Importance, item.Importance, signals.Importance),
		Difficulty:   firstNonZero(ov.Difficulty, item.Difficulty, signals.Difficulty),
		Tags:         stripTagPrefix(tags),
		People:       item.People,
		Location:     firstNonEmpty(item.Location, ov.Location),
		Notes:        item.Notes,
		SourceNoteID: &noteID,
	}

	if err := m.store.CreateEvent(ev); err != nil {
		return nil, false, err
	}
	if ev.Active {
		if err := m.store.StopActiveSessionsExcept(ev.ID, startMs); err != nil {
			return nil, false, err
		}
	}

	if err := m.resolveEventEntities(ev, rc); err != nil {
		return nil, false, err
	}
	if err := m.store.RecordTaxonomyPair(class.Category, class.Subcategory); err != nil {
		return nil, false, err
	}
	return ev, true, nil
}

// materializeItemLog persists a parser item of kind log as a log record at
// its stated time, or at the anchor when untimed.
func (m *Materializer) materializeItemLog(item *parser.Item, rc *RunContext) (*database.Event, bool, error) {
	atMs := rc.AnchorMs
	if item.StartAt != nil {
		atMs = *item.StartAt
	}

	title := item.Title
	if item.TrackerKey != "" {
		if !rc.ClaimTrackerKey(item.TrackerKey, atMs) {
			return nil, false, nil
		}
		if _, err := m.store.EnsureTrackerDef(item.TrackerKey); err != nil {
			return nil, false, err
		}
		if title == "" {
			title = fmt.Sprintf("%s: %g", item.TrackerKey, item.TrackerValue)
		}
	} else if !rc.ClaimEventKey(title, atMs, 0) {
		return nil, false, nil
	}

	ev, err := m.createLog(title, item.TrackerKey, atMs, rc)
	if err != nil {
		return nil, false, err
	}
	return ev, true, nil
}

// MaterializeTask persists one parsed task, reusing existing tasks when
// possible: first by note-item token, then by title under the same parent
// event, else a new record.
func (m *Materializer) MaterializeTask(item parser.Item, ov capture.Overrides, rc *RunContext, parentEventID *string) (*database.Task, bool, error) {
	if !rc.ClaimTaskKey(item.Title) {
		return nil, false, nil
	}

	if item.Token != "" {
		existing, err := m.store.FindTaskByToken(item.Token)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			applyTaskCompletion(existing, &item)
			if err := m.store.UpsertTask(existing); err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
	}

	existing, err := m.store.FindTaskByTitleUnderParent(item.Title, parentEventID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if item.Token != "" && !strings.Contains(existing.Notes, item.Token) {
			if existing.Notes != "" {
				existing.Notes += "\n"
			}
			existing.Notes += "ref: " + item.Token
		}
		applyTaskCompletion(existing, &item)
		if err := m.store.UpsertTask(existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	class := taxonomy.Classify(taxonomy.Input{
		Title:               item.Title,
		Tags:                item.Tags,
		OverrideCategory:    ov.Category,
		OverrideSubcategory: ov.Subcategory,
		Rules:               rc.Rules,
	})

	noteID := rc.NoteID
	task := &database.Task{
		Title:           item.Title,
		Status:          database.TaskStatusTodo,
		EstimateMinutes: item.EstimateMinutes,
		DueAt:           item.DueAt,
		Category:        class.Category,
		Subcategory:     class.Subcategory,
		Importance:      firstNonZero(ov.Importance, item.Importance),
		Notes:           checklistNotes(item.Checklist),
		ItemToken:       item.Token,
		ParentEventID:   parentEventID,
		SourceNoteID:    &noteID,
	}
	if item.Completed {
		task.Status = database.TaskStatusDone
	}

	if err := m.store.CreateTask(task); err != nil {
		return nil, false, err
	}
	return task, true, nil
}

// MaterializeMeal persists a meal as a Food event with nutrition totals in
// its notes.
func (m *Materializer) MaterializeMeal(meal estimate.Meal, rc *RunContext) (*database.Event, bool, error) {
	const mealWindowMs = 30 * 60 * 1000
	startMs := rc.AnchorMs - mealWindowMs
	endMs := rc.AnchorMs

	if !rc.ClaimEventKey(meal.Title, startMs, endMs-startMs) {
		return nil, false, nil
	}

	var lines []string
	for _, item := range meal.Items {
		lines = append(lines, fmt.Sprintf("%s x%g (~%.0f kcal)", item.Name, item.Qty, item.Nutrition.Calories))
	}
	totals := meal.Totals()
	lines = append(lines, fmt.Sprintf("total ~%.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat",
		totals.Calories, totals.ProteinG, totals.CarbsG, totals.FatG))

	noteID := rc.NoteID
	ev := &database.Event{
		Title:        meal.Title,
		Kind:         database.EventKindEvent,
		StartAt:      startMs,
		EndAt:        endMs,
		Category:     "Food",
		Subcategory:  "Meal",
		Tags:         database.StringList{"food", meal.Kind},
		Notes:        strings.Join(lines, "\n"),
		SourceNoteID: &noteID,
	}
	if err := m.store.CreateEvent(ev); err != nil {
		return nil, false, err
	}
	if err := m.store.RecordTaxonomyPair(ev.Category, ev.Subcategory); err != nil {
		return nil, false, err
	}
	return ev, true, nil
}

// MaterializeWorkout persists a workout as a Health/Workout event with the
// exercises listed in its notes.
func (m *Materializer) MaterializeWorkout(workout estimate.Workout, rc *RunContext) (*database.Event, bool, error) {
	durationMs := int64(workoutMinutes(&workout)) * 60 * 1000
	startMs := rc.AnchorMs - durationMs
	endMs := rc.AnchorMs

	if !rc.ClaimEventKey(workout.Title, startMs, endMs-startMs) {
		return nil, false, nil
	}

	var lines []string
	for _, ex := range workout.Exercises {
		lines = append(lines, formatExercise(&ex))
	}

	noteID := rc.NoteID
	ev := &database.Event{
		Title:        workout.Title,
		Kind:         database.EventKindEvent,
		StartAt:      startMs,
		EndAt:        endMs,
		Category:     "Health",
		Subcategory:  "Workout",
		Tags:         database.StringList{"workout"},
		Notes:        strings.Join(lines, "\n"),
		SourceNoteID: &noteID,
	}
	if err := m.store.CreateEvent(ev); err != nil {
		return nil, false, err
	}
	if err := m.store.RecordTaxonomyPair(ev.Category, ev.Subcategory); err != nil {
		return nil, false, err
	}
	return ev, true, nil
}

// ApplyHabits logs a completion for every habit whose keywords appear in
// the capture body.
func (m *Materializer) ApplyHabits(body string, habits []database.HabitDef, rc *RunContext) (int, error) {
	lower := strings.ToLower(body)
	completed := 0

	for i := range habits {
		habit := &habits[i]
		if !habitMatches(lower, habit) {
			continue
		}
		title := "Habit: " + habit.Name
		if !rc.ClaimEventKey(title, rc.AnchorMs, 0) {
			continue
		}

		log, err := m.createLog(title, "", rc.AnchorMs, rc)
		if err != nil {
			return completed, err
		}
		log.Tags = stripTagPrefix(unionStrings(habit.Tags, []string{"habit"}))
		log.Category = habit.Category
		log.Subcategory = habit.Subcategory
		log.Importance = habit.Importance
		log.Difficulty = habit.Difficulty
		if err := m.store.UpsertEvent(log); err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

// resolveEventEntities upserts the canonical entities referenced by an
// event, deduplicating within the capture pass.
func (m *Materializer) resolveEventEntities(ev *database.Event, rc *RunContext) error {
	resolve := func(kind, key, label string) error {
		if key == "" {
			return nil
		}
		if _, ok := rc.EntityID(kind, key); ok {
			return nil
		}
		entity, err := m.store.EnsureEntity(kind, key, label)
		if err != nil {
			return err
		}
		rc.RememberEntity(kind, key, entity.ID)
		return nil
	}

	for _, tag := range ev.Tags {
		if err := resolve(database.EntityKindTag, tag, tag); err != nil {
			return err
		}
	}
	for _, person := range ev.People {
		if err := resolve(database.EntityKindPerson, person, person); err != nil {
			return err
		}
	}
	if err := resolve(database.EntityKindPlace, ev.Location, ev.Location); err != nil {
		return err
	}
	return nil
}

// resolveEventWindow turns parsed time bounds into concrete ones.
// Explicitly timed events keep their window. An untimed event with a
// duration is read as having just finished at the anchor. An untimed event
// with no duration is the activity happening now: it starts at the anchor,
// stays open, and becomes the active session.
func resolveEventWindow(item *parser.Item, signals *signal.Set, anchorMs int64) (startMs, endMs int64, active bool) {
	if item.ExplicitTime && item.StartAt != nil {
		startMs = *item.StartAt
		switch {
		case item.EndAt != nil:
			endMs = *item.EndAt
		case item.DurationMinutes > 0:
			endMs = startMs + int64(item.DurationMinutes)*60*1000
		default:
			endMs = startMs + 60*60*1000
		}
		return startMs, endMs, false
	}

	minutes := item.DurationMinutes
	if minutes == 0 {
		minutes = signals.DurationMinutes
	}
	if minutes > 0 {
		endMs = anchorMs
		startMs = anchorMs - int64(minutes)*60*1000
		return startMs, endMs, false
	}

	return anchorMs, anchorMs, true
}

func applyTaskCompletion(task *database.Task, item *parser.Item) {
	if item.Completed && task.Status != database.TaskStatusDone {
		task.Status = database.TaskStatusDone
	}
}

func checklistNotes(checklist []string) string {
	if len(checklist) == 0 {
		return ""
	}
	lines := make([]string, len(checklist))
	for i, entry := range checklist {
		lines[i] = "- [ ] " + entry
	}
	return strings.Join(lines, "\n")
}

func formatExercise(ex *estimate.Exercise) string {
	switch {
	case ex.Sets > 0:
		line := fmt.Sprintf("%s %dx%d", ex.Name, ex.Sets, ex.Reps)
		if ex.WeightLb > 0 {
			line += fmt.Sprintf(" @ %g lb", ex.WeightLb)
		}
		return line
	case ex.DistanceMi > 0:
		return fmt.Sprintf("%s %.1f mi", ex.Name, ex.DistanceMi)
	case ex.DurationMin > 0:
		return fmt.Sprintf("%s %d min", ex.Name, ex.DurationMin)
	default:
		return ex.Name
	}
}

func habitMatches(lowerBody string, habit *database.HabitDef) bool {
	for _, kw := range habit.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lowerBody, kw) {
			return true
		}
	}
	return false
}

func defaultSessionMinutes(signals *signal.Set) int {
	if signals.DurationMinutes > 0 {
		return signals.DurationMinutes
	}
	return 60
}

func workoutMinutes(w *estimate.Workout) int {
	total := 0
	for _, ex := range w.Exercises {
		total += ex.DurationMin
	}
	if total == 0 {
		total = 60
	}
	return total
}

func stripTagPrefix(tags []string) database.StringList {
	out := make(database.StringList, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimPrefix(t, "#"))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
