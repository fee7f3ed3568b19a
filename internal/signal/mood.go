// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package signal

import (
	"regexp"
	"strconv"
	"strings"
)

// readingKeys are the prose-inferred score trackers.
var readingKeys = []string{"mood", "energy", "stress"}

// ratingWindow is how far past a keyword a rating may appear, and how far
// around a mood mention the start/now hint words are searched.
const ratingWindow = 16

type adjectiveEntry struct {
	word    string
	reading Reading
}

var (
	// 7, 7.5, or a stated range 7-8 (averaged)
	windowRatingRegex = regexp.MustCompile(`(\d{1,2}(?:\.\d+)?)(?:\s*-\s*(\d{1,2}(?:\.\d+)?))?`)

	moodMentionRegex = regexp.MustCompile(`(?i)\bmood\s+(?:is|was)\s+|\bfeeling\s+`)

	numberWords = map[string]float64{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	}
	numberWordRegex = regexp.MustCompile(`(?i)\b(one|two|three|four|five|six|seven|eight|nine|ten)\b`)

	// adjective -> inferred tracker reading, used only when no numeric form
	// exists for the key and a feeling context is present. Scanned in order,
	// so the first listed adjective present in the text wins for its key.
	adjectiveLexicon = []adjectiveEntry{
		{"exhausted", Reading{Key: "energy", Value: 2}},
		{"drained", Reading{Key: "energy", Value: 2}},
		{"tired", Reading{Key: "energy", Value: 3}},
		{"sluggish", Reading{Key: "energy", Value: 3}},
		{"energized", Reading{Key: "energy", Value: 8}},
		{"energetic", Reading{Key: "energy", Value: 8}},
		{"awful", Reading{Key: "mood", Value: 2}},
		{"terrible", Reading{Key: "mood", Value: 2}},
		{"miserable", Reading{Key: "mood", Value: 2}},
		{"sad", Reading{Key: "mood", Value: 3}},
		{"down", Reading{Key: "mood", Value: 3}},
		{"meh", Reading{Key: "mood", Value: 5}},
		{"okay", Reading{Key: "mood", Value: 5}},
		{"good", Reading{Key: "mood", Value: 7}},
		{"happy", Reading{Key: "mood", Value: 8}},
		{"great", Reading{Key: "mood", Value: 8}},
		{"amazing", Reading{Key: "mood", Value: 9}},
		{"fantastic", Reading{Key: "mood", Value: 9}},
		{"stressed", Reading{Key: "stress", Value: 7}},
		{"anxious", Reading{Key: "stress", Value: 7}},
		{"overwhelmed", Reading{Key: "stress", Value: 8}},
		{"calm", Reading{Key: "stress", Value: 2}},
		{"relaxed", Reading{Key: "stress", Value: 2}},
	}

	feelingContextRegex = regexp.MustCompile(`(?i)\b(feel|feeling|felt|mood|energy|stress|i am|i'm|was|been)\b`)

	startHintWords = []string{"earlier", "started", "start", "began", "beginning", "at first", "initially", "this morning"}
	nowHintWords   = []string{"now", "currently", "current", "after", "at the moment", "tonight", "ended up"}
)

// ExtractReadings infers mood/energy/stress values from prose. Explicit
// "keyword near number" forms win; the adjective lexicon is consulted only
// when a key has no numeric form and the text carries a feeling context.
func ExtractReadings(text string) []Reading {
	var readings []Reading
	covered := make(map[string]bool)

	lower := strings.ToLower(text)
	for _, key := range readingKeys {
		if v, ok := ratingNearKeyword(text, lower, key); ok {
			readings = append(readings, Reading{Key: key, Value: v})
			covered[key] = true
		}
	}

	// Adjective fallback
	if feelingContextRegex.MatchString(text) {
		for _, entry := range adjectiveLexicon {
			if covered[entry.reading.Key] {
				continue
			}
			if containsWordBoundary(lower, entry.word) {
				readings = append(readings, entry.reading)
				covered[entry.reading.Key] = true
			}
		}
	}

	return readings
}

// ratingNearKeyword finds a numeric or number-word rating within the window
// following a keyword occurrence. A stated range like "7-8" is averaged.
func ratingNearKeyword(text, lower, key string) (float64, bool) {
	offset := 0
	for {
		idx := strings.Index(lower[offset:], key)
		if idx == -1 {
			return 0, false
		}
		idx += offset
		offset = idx + len(key)

		// #mood(7) is a tracker token, not a prose reading
		if idx > 0 && text[idx-1] == '#' {
			continue
		}
		if !isWordBoundaryAt(lower, idx, len(key)) {
			continue
		}

		end := idx + len(key) + ratingWindow
		if end > len(text) {
			end = len(text)
		}
		window := text[idx+len(key) : end]

		if m := windowRatingRegex.FindStringSubmatch(window); m != nil {
			lo, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				v := lo
				if m[2] != "" {
					if hi, err := strconv.ParseFloat(m[2], 64); err == nil {
						v = (lo + hi) / 2
					}
				}
				return clampFloat(v, 1, 10), true
			}
		}
		if m := numberWordRegex.FindStringSubmatch(window); m != nil {
			return numberWords[strings.ToLower(m[1])], true
		}
	}
}

// ExtractMoodMentions finds every "mood is/was X" or "feeling X" occurrence
// with a start-vs-now hint from the surrounding words. Two or more mentions
// let the pipeline log a start point and a now point instead of one value.
func ExtractMoodMentions(text string) []MoodMention {
	var mentions []MoodMention
	lower := strings.ToLower(text)

	for _, loc := range moodMentionRegex.FindAllStringIndex(text, -1) {
		end := loc[1] + ratingWindow
		if end > len(text) {
			end = len(text)
		}
		window := text[loc[1]:end]

		var value float64
		found := false
		if m := windowRatingRegex.FindStringSubmatch(window); m != nil {
			if lo, err := strconv.ParseFloat(m[1], 64); err == nil {
				value = lo
				if m[2] != "" {
					if hi, err := strconv.ParseFloat(m[2], 64); err == nil {
						value = (lo + hi) / 2
					}
				}
				found = true
			}
		}
		if !found {
			if m := numberWordRegex.FindStringSubmatch(window); m != nil {
				value = numberWords[strings.ToLower(m[1])]
				found = true
			}
		}
		if !found {
			continue
		}

		mentions = append(mentions, MoodMention{
			Value: clampFloat(value, 1, 10),
			Hint:  mentionHint(lower, loc[0], loc[1]),
		})
	}

	return mentions
}

// mentionHint classifies a mention as start or now from words within the
// hint window on either side of the match. Both windows are clipped at
// clause boundaries so a hint word opening the next clause, or closing the
// previous one, never describes this mention.
func mentionHint(lower string, start, end int) string {
	from := start - ratingWindow
	if from < 0 {
		from = 0
	}
	to := end + ratingWindow
	if to > len(lower) {
		to = len(lower)
	}
	after := lower[end:to]
	if cut := strings.IndexAny(after, ",.;\n"); cut != -1 {
		after = after[:cut]
	}
	before := lower[from:start]
	if cut := strings.LastIndexAny(before, ",.;\n"); cut != -1 {
		before = before[cut+1:]
	}
	clause := before + after

	for _, w := range nowHintWords {
		if strings.Contains(after, w) {
			return HintNow
		}
	}
	for _, w := range startHintWords {
		if strings.Contains(clause, w) {
			return HintStart
		}
	}
	for _, w := range nowHintWords {
		if strings.Contains(clause, w) {
			return HintNow
		}
	}
	return HintNow
}

// containsWordBoundary reports whether word occurs in lower on word
// boundaries.
func containsWordBoundary(lower, word string) bool {
	offset := 0
	for {
		idx := strings.Index(lower[offset:], word)
		if idx == -1 {
			return false
		}
		idx += offset
		if isWordBoundaryAt(lower, idx, len(word)) {
			return true
		}
		offset = idx + len(word)
	}
}

// isWordBoundaryAt reports whether s[idx:idx+n] sits on word boundaries.
func isWordBoundaryAt(s string, idx, n int) bool {
	if idx > 0 && isWordChar(s[idx-1]) {
		return false
	}
	if idx+n < len(s) && isWordChar(s[idx+n]) {
		return false
	}
	return true
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
