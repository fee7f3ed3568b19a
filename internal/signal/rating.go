// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package signal

import (
	"regexp"
	"strconv"
)

var (
	importanceBangRegex  = regexp.MustCompile(`!(\d{1,2})\b`)
	difficultyCaretRegex = regexp.MustCompile(`\^(\d{1,2})\b`)

	importanceKeyRegex = regexp.MustCompile(`(?i)\bimportance\s*[:=]\s*(\d{1,2})\b`)
	difficultyKeyRegex = regexp.MustCompile(`(?i)\b(?:difficulty|effort)\s*[:=]\s*(\d{1,2})\b`)

	importanceSlashRegex = regexp.MustCompile(`(?i)\bimportance\s+(?:is\s+)?(\d{1,2})/10\b`)
	difficultySlashRegex = regexp.MustCompile(`(?i)\b(?:difficulty|effort)\s+(?:is\s+)?(\d{1,2})/10\b`)
)

// ExtractImportance finds an importance rating (!N, importance:N, or
// "importance N/10") and clamps it to [1, 10].
func ExtractImportance(text string) (int, bool) {
	return firstRating(text, importanceBangRegex, importanceKeyRegex, importanceSlashRegex)
}

// ExtractDifficulty finds a difficulty rating (^N, difficulty:N, or
// "difficulty N/10") and clamps it to [1, 10].
func ExtractDifficulty(text string) (int, bool) {
	return firstRating(text, difficultyCaretRegex, difficultyKeyRegex, difficultySlashRegex)
}

// firstRating returns the first match across the given patterns, in order.
func firstRating(text string, patterns ...*regexp.Regexp) (int, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			v, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return clampInt(v, 1, 10), true
		}
	}
	return 0, false
}
