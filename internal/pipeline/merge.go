// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/daybook-io/daybook/internal/parser"
	"github.com/daybook-io/daybook/internal/signal"
)

// MergeUntimedEvents collapses time-ambiguous events from one capture into
// a single event. A capture usually describes one contiguous activity in
// several clauses; without explicit times, multi-segment wording, or two
// distinct money amounts, those clauses must not fragment into several
// near-duplicate entries. Secondary titles survive as note lines.
func MergeUntimedEvents(events []parser.Item, signals *signal.Set) []parser.Item {
	if len(events) < 2 {
		return events
	}
	if signals.HasExplicitTime || signals.HasMultiSegment || len(signals.Money) >= 2 {
		return events
	}

	var merged *parser.Item
	var kept []parser.Item
	var extraNotes []string

	for i := range events {
		ev := events[i]
		if ev.Kind != parser.KindEvent || ev.ExplicitTime {
			kept = append(kept, ev)
			continue
		}

		if merged == nil {
			m := ev
			merged = &m
			continue
		}

		mergeTimes(merged, &ev)
		merged.Tags = unionStrings(merged.Tags, ev.Tags)
		merged.People = unionStrings(merged.People, ev.People)
		if merged.Location == "" {
			merged.Location = ev.Location
		}
		if ev.Importance > merged.Importance {
			merged.Importance = ev.Importance
		}
		if ev.Difficulty > merged.Difficulty {
			merged.Difficulty = ev.Difficulty
		}
		if merged.DurationMinutes == 0 {
			merged.DurationMinutes = ev.DurationMinutes
		}
		extraNotes = append(extraNotes, ev.Title)
		if ev.Notes != "" {
			extraNotes = append(extraNotes, ev.Notes)
		}
	}

	if merged == nil {
		return kept
	}
	if len(extraNotes) > 0 {
		lines := merged.Notes
		if lines != "" {
			lines += "\n"
		}
		merged.Notes = lines + strings.Join(extraNotes, "\n")
	}
	return append([]parser.Item{*merged}, kept...)
}

// mergeTimes widens the merged window to the earliest start and latest end.
func mergeTimes(dst, src *parser.Item) {
	if src.StartAt != nil && (dst.StartAt == nil || *src.StartAt < *dst.StartAt) {
		dst.StartAt = src.StartAt
	}
	if src.EndAt != nil && (dst.EndAt == nil || *src.EndAt > *dst.EndAt) {
		dst.EndAt = src.EndAt
	}
}

// GroupWorkBlocks collapses two or more explicitly-timed work events into
// one spanning "Work" event whose notes list each segment with its time.
func GroupWorkBlocks(events []parser.Item) []parser.Item {
	var workIdx []int
	for i := range events {
		if events[i].Kind != parser.KindEvent || !events[i].ExplicitTime || events[i].StartAt == nil {
			continue
		}
		if isWorkItem(&events[i]) {
			workIdx = append(workIdx, i)
		}
	}
	if len(workIdx) < 2 {
		return events
	}

	block := parser.Item{
		Kind:         parser.KindEvent,
		Title:        "Work",
		ExplicitTime: true,
		Category:     "Work",
	}
	var segments []string

	for _, i := range workIdx {
		ev := &events[i]
		mergeTimes(&block, ev)
		block.Tags = unionStrings(block.Tags, ev.Tags)
		block.People = unionStrings(block.People, ev.People)
		if ev.Importance > block.Importance {
			block.Importance = ev.Importance
		}
		if ev.Difficulty > block.Difficulty {
			block.Difficulty = ev.Difficulty
		}
		segments = append(segments, fmt.Sprintf("%s %s", formatSegmentTime(ev), ev.Title))
	}
	block.Notes = strings.Join(segments, "\n")
	block.Tags = unionStrings(block.Tags, []string{"work"})

	grouped := make([]parser.Item, 0, len(events)-len(workIdx)+1)
	grouped = append(grouped, block)
	skip := make(map[int]bool, len(workIdx))
	for _, i := range workIdx {
		skip[i] = true
	}
	for i := range events {
		if !skip[i] {
			grouped = append(grouped, events[i])
		}
	}
	return grouped
}

func isWorkItem(ev *parser.Item) bool {
	for _, t := range ev.Tags {
		if strings.EqualFold(strings.TrimPrefix(t, "#"), "work") {
			return true
		}
	}
	return strings.EqualFold(ev.Category, "Work")
}

func formatSegmentTime(ev *parser.Item) string {
	start := time.UnixMilli(*ev.StartAt).Format("15:04")
	if ev.EndAt == nil {
		return start
	}
	return start + "-" + time.UnixMilli(*ev.EndAt).Format("15:04")
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
