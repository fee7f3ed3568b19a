// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parser

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/daybook-io/daybook/internal/estimate"
	"github.com/daybook-io/daybook/internal/signal"
)

// LocalStrategy is the heuristic parser. It splits the capture into
// clauses, classifies each as task or event, and reads per-clause time and
// rating signals. It never calls the network and never fails.
type LocalStrategy struct{}

// NewLocalStrategy creates the heuristic strategy.
func NewLocalStrategy() *LocalStrategy {
	return &LocalStrategy{}
}

// Name identifies the strategy in logs
func (s *LocalStrategy) Name() string {
	return "local"
}

// Parse runs the heuristic parser. The returned error is always nil; the
// signature satisfies the strategy interface.
func (s *LocalStrategy) Parse(_ context.Context, text string, anchorMs int64) (*Result, error) {
	return ParseCaptureNatural(text, anchorMs), nil
}

var (
	clauseSplitRegex = regexp.MustCompile(`(?i)(?:\.\s+|;\s*|\n+|,?\s+then\s+|,?\s+after that,?\s+)`)

	taskRegex      = regexp.MustCompile(`(?i)^(?:i\s+)?(?:need to|needs to|have to|must|todo:?|to-do:?|remember to|don't forget to|gotta)\s+(.+)$`)
	checklistRegex = regexp.MustCompile(`^[-*]\s+(?:\[([ xX])\]\s*)?(.+)$`)
	doneTaskRegex  = regexp.MustCompile(`(?i)^(?:done|finished|completed):\s*(.+)$`)

	// A clause that only states a tracker reading or an episode trigger is
	// not an event; those materialize as logs and episodes regardless of
	// the parser.
	readingOnlyRegex = regexp.MustCompile(`(?i)^(?:my\s+)?(?:mood|energy|stress|pain|focus|anxiety)\s*(?:is|was|at|:)?\s*(?:\d{1,2}(?:\.\d+)?(?:\s*-\s*\d{1,2}(?:\.\d+)?)?|one|two|three|four|five|six|seven|eight|nine|ten)(?:\s*(?:/|out of)\s*(?:10|ten))?(?:\s+(?:today|now|tonight|this morning|this evening))?$`)
	episodeOnlyRegex = regexp.MustCompile(`(?i)^(?:started my period|period (?:started|began)|got my period|period (?:ended|is over|stopped|finished)|ended my period)(?:\s+(?:today|yesterday|this morning))?$`)

	titleStripRegexes = []*regexp.Regexp{
		regexp.MustCompile(`#[\p{L}\d_/-]+(?:\([^)]*\)|:\d+(?:\.\d+)?)?`),
		regexp.MustCompile(`![0-9]+`),
		regexp.MustCompile(`\^[0-9]+`),
		regexp.MustCompile(`(?i)~\s*\d+(?:\.\d+)?\s*(?:h(?:ours?|rs?)?(?:\s*\d+\s*m(?:in(?:ute)?s?)?)?|m(?:in(?:ute)?s?)?)`),
		regexp.MustCompile(`(?i)\b(?:importance|priority|difficulty|effort)\s*[:=]\s*\d+`),
		regexp.MustCompile(`\s{2,}`),
	}
)

// ParseCaptureNatural is the heuristic clause parser behind LocalStrategy.
func ParseCaptureNatural(text string, anchorMs int64) *Result {
	anchor := time.UnixMilli(anchorMs)
	result := &Result{}

	var lastTask *Item
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if cm := checklistRegex.FindStringSubmatch(line); cm != nil {
			entry := strings.TrimSpace(cm[2])
			if entry == "" {
				continue
			}
			if lastTask != nil {
				lastTask.Checklist = append(lastTask.Checklist, entry)
				continue
			}
			item := buildTask(entry, anchor)
			item.Completed = strings.EqualFold(cm[1], "x")
			result.Tasks = append(result.Tasks, item)
			lastTask = &result.Tasks[len(result.Tasks)-1]
			continue
		}

		for _, clause := range clauseSplitRegex.Split(line, -1) {
			clause = strings.Trim(clause, " .,!")
			if clause == "" {
				continue
			}

			if tm := taskRegex.FindStringSubmatch(clause); tm != nil {
				result.Tasks = append(result.Tasks, buildTask(tm[1], anchor))
				lastTask = &result.Tasks[len(result.Tasks)-1]
				continue
			}
			if dm := doneTaskRegex.FindStringSubmatch(clause); dm != nil {
				item := buildTask(dm[1], anchor)
				item.Completed = true
				result.Tasks = append(result.Tasks, item)
				lastTask = &result.Tasks[len(result.Tasks)-1]
				continue
			}

			if readingOnlyRegex.MatchString(clause) || episodeOnlyRegex.MatchString(clause) {
				continue
			}
			if ev, ok := buildEvent(clause, anchor); ok {
				result.Events = append(result.Events, ev)
			}
		}
	}

	if meal, ok := estimate.ParseMealFromText(text, estimate.MealOptions{DefaultKind: mealKindForHour(anchor.Hour())}); ok {
		result.Meals = append(result.Meals, *meal)
	}
	if workout, ok := estimate.ParseWorkoutFromText(text); ok && len(workout.Exercises) > 0 {
		result.Workouts = append(result.Workouts, *workout)
	}

	return result
}

// buildEvent turns a clause into an event item. Clauses that reduce to
// nothing after signal-token stripping are dropped.
func buildEvent(clause string, anchor time.Time) (Item, bool) {
	title := cleanTitle(clause)
	if title == "" {
		return Item{}, false
	}

	item := Item{
		Kind:  KindEvent,
		Title: title,
		Tags:  signal.ExtractTags(clause),
	}

	people, places := signal.ExtractPeopleAndPlaces(clause)
	item.People = people
	if len(places) > 0 {
		item.Location = places[0]
	}
	if v, ok := signal.ExtractImportance(clause); ok {
		item.Importance = v
	}
	if v, ok := signal.ExtractDifficulty(clause); ok {
		item.Difficulty = v
	}
	if minutes, ok := signal.ExtractDuration(clause); ok {
		item.DurationMinutes = minutes
	}

	applyClauseTime(&item, clause, anchor)
	return item, true
}

// buildTask turns a clause into a task item.
func buildTask(clause string, anchor time.Time) Item {
	item := Item{
		Kind:  KindTask,
		Title: cleanTitle(clause),
		Tags:  signal.ExtractTags(clause),
	}
	if item.Title == "" {
		item.Title = strings.TrimSpace(clause)
	}
	if minutes, ok := signal.ExtractDuration(clause); ok {
		item.EstimateMinutes = minutes
	}
	if v, ok := signal.ExtractImportance(clause); ok {
		item.Importance = v
	}
	if ct, ok := signal.ExtractAtTime(clause); ok {
		due := ct.Resolve(anchor).UnixMilli()
		item.DueAt = &due
	}
	return item
}

// applyClauseTime resolves an explicit range or at-time inside the clause.
// A bare "N-N" with no meridiem, minutes, or "from" wording is not treated
// as a range; those digits are usually a rating ("mood 7-8").
func applyClauseTime(item *Item, clause string, anchor time.Time) {
	if start, end, ok := signal.ExtractTimeRange(clause); ok {
		trusted := start.HasMeridiem || end.HasMeridiem || start.Minute > 0 || end.Minute > 0 ||
			strings.Contains(strings.ToLower(clause), "from ")
		if trusted {
			startT := start.Resolve(anchor)
			endT := end.Resolve(anchor)
			if endT.Before(startT) {
				endT = endT.Add(12 * time.Hour)
			}
			startMs := startT.UnixMilli()
			endMs := endT.UnixMilli()
			item.StartAt = &startMs
			item.EndAt = &endMs
			item.ExplicitTime = true
			return
		}
	}

	if ct, ok := signal.ExtractAtTime(clause); ok {
		startT := ct.Resolve(anchor)
		minutes := item.DurationMinutes
		if minutes == 0 {
			minutes = 60
		}
		startMs := startT.UnixMilli()
		endMs := startT.Add(time.Duration(minutes) * time.Minute).UnixMilli()
		item.StartAt = &startMs
		item.EndAt = &endMs
		item.ExplicitTime = true
	}
}

// cleanTitle strips signal tokens and normalizes the clause into a title.
func cleanTitle(clause string) string {
	title := clause
	for _, re := range titleStripRegexes {
		title = re.ReplaceAllString(title, " ")
	}
	title = strings.Join(strings.Fields(title), " ")
	title = strings.Trim(title, " .,!:;-")
	if title == "" {
		return ""
	}
	return strings.ToUpper(title[:1]) + title[1:]
}

// mealKindForHour guesses a meal kind from the anchor's local hour.
func mealKindForHour(hour int) string {
	switch {
	case hour < 11:
		return "breakfast"
	case hour < 15:
		return "lunch"
	case hour < 21:
		return "dinner"
	default:
		return "snack"
	}
}
