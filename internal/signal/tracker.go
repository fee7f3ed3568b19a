// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package signal

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// #mood(7) or #mood:7
	trackerParenRegex = regexp.MustCompile(`#([a-zA-Z][a-zA-Z0-9_-]*)\(([-+]?\d+(?:\.\d+)?)\)`)
	trackerColonRegex = regexp.MustCompile(`#([a-zA-Z][a-zA-Z0-9_-]*):([-+]?\d+(?:\.\d+)?)\b`)

	// plain #tag, with slash-tags (#work/clinic) allowed
	tagRegex = regexp.MustCompile(`#([a-zA-Z][a-zA-Z0-9_/-]*)`)
)

// ExtractTrackerTokens finds explicit #key(value) and #key:value tokens.
// Sleep is excluded here; sleep intervals flow through their own pathway.
func ExtractTrackerTokens(text string) []TrackerToken {
	var tokens []TrackerToken
	seen := make(map[string]bool)

	collect := func(matches [][]string) {
		for _, m := range matches {
			key := strings.ToLower(m[1])
			if key == "sleep" {
				continue
			}
			value, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			dedupeKey := key + "=" + m[2]
			if seen[dedupeKey] {
				continue
			}
			seen[dedupeKey] = true
			tokens = append(tokens, TrackerToken{Key: key, Value: value})
		}
	}

	collect(trackerParenRegex.FindAllStringSubmatch(text, -1))
	collect(trackerColonRegex.FindAllStringSubmatch(text, -1))

	return tokens
}

// ExtractTags finds plain #word tags. Tokens carrying a value annotation
// ((n) or :n) are tracker tokens, not tags, and are skipped.
func ExtractTags(text string) []string {
	var tags []string
	seen := make(map[string]bool)

	for _, loc := range tagRegex.FindAllStringSubmatchIndex(text, -1) {
		tag := text[loc[2]:loc[3]]
		rest := text[loc[3]:]

		// A following (n) or :n marks a tracker token
		if strings.HasPrefix(rest, "(") {
			continue
		}
		if len(rest) >= 2 && rest[0] == ':' && rest[1] >= '0' && rest[1] <= '9' {
			continue
		}

		normalized := strings.ToLower(tag)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		tags = append(tags, normalized)
	}

	return tags
}
