// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package signal is a library of independent pattern matchers run over a
// capture body. Every extractor is a pure function of the input text,
// returns an empty result on non-match, and never fails; extractors may run
// in any order.
package signal

// TrackerToken is an explicit #key(value) or #key:value annotation.
type TrackerToken struct {
	Key   string
	Value float64
}

// Reading is a tracker value inferred from prose rather than an explicit
// token (mood/energy/stress ratings and adjective-lexicon lookups).
type Reading struct {
	Key   string
	Value float64
}

// MoodMention is one "mood is/was/feeling X" occurrence. Hint says whether
// the surrounding words point at the start of the activity or at now.
type MoodMention struct {
	Value float64
	Hint  string // "start" or "now"
}

// Mention hint values
const (
	HintStart = "start"
	HintNow   = "now"
)

// Set is the combined output of all extractors for one capture body.
type Set struct {
	DurationMinutes int // 0 when absent
	Importance      int // 0 when absent, else 1-10
	Difficulty      int // 0 when absent, else 1-10
	Trackers        []TrackerToken
	Tags            []string
	Readings        []Reading
	MoodMentions    []MoodMention
	People          []string
	Places          []string
	Money           []float64
	ShoppingItems   []string
	HasExplicitTime bool
	HasMultiSegment bool
}

// Extract runs every extractor over the text and collects the results.
func Extract(text string) *Set {
	s := &Set{
		Trackers:        ExtractTrackerTokens(text),
		Tags:            ExtractTags(text),
		Readings:        ExtractReadings(text),
		MoodMentions:    ExtractMoodMentions(text),
		Money:           ExtractMoney(text),
		ShoppingItems:   ExtractShoppingItems(text),
		HasExplicitTime: HasExplicitTime(text),
		HasMultiSegment: HasMultiSegmentKeyword(text),
	}

	if minutes, ok := ExtractDuration(text); ok {
		s.DurationMinutes = minutes
	}
	if v, ok := ExtractImportance(text); ok {
		s.Importance = v
	}
	if v, ok := ExtractDifficulty(text); ok {
		s.Difficulty = v
	}

	people, places := ExtractPeopleAndPlaces(text)
	s.People = people
	s.Places = places

	return s
}

// clampInt bounds v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
