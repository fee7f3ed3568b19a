// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package signal

import (
	"regexp"
	"strings"
)

// Episode actions
const (
	EpisodeOpen  = "open"
	EpisodeClose = "close"
)

// EpisodeSignal is a textual trigger for a multi-day condition keyed by
// tracker key.
type EpisodeSignal struct {
	TrackerKey string
	Action     string
	Value      float64 // rating stated alongside the trigger, 0 when absent
	Tags       []string
}

var (
	periodStartRegex = regexp.MustCompile(`(?i)\b(?:started my period|period (?:started|began)|got my period)\b`)
	periodEndRegex   = regexp.MustCompile(`(?i)\b(?:period (?:ended|is over|stopped|finished)|ended my period)\b`)

	painHealedRegex = regexp.MustCompile(`(?i)\b(?:healed|pain (?:is )?gone|no more pain|pain.{0,12}(?:cleared|stopped)|pain[- ]free)\b`)
)

// ExtractEpisodeSignals derives open/close triggers for multi-day episodes
// from the text. A pain rating or keyword with no healed phrase opens a pain
// episode; a healed phrase closes it. Period phrases open and close the
// period episode.
func ExtractEpisodeSignals(text string) []EpisodeSignal {
	var signals []EpisodeSignal
	lower := strings.ToLower(text)

	if periodStartRegex.MatchString(text) {
		signals = append(signals, EpisodeSignal{
			TrackerKey: "period",
			Action:     EpisodeOpen,
			Tags:       []string{"period"},
		})
	}
	if periodEndRegex.MatchString(text) {
		signals = append(signals, EpisodeSignal{
			TrackerKey: "period",
			Action:     EpisodeClose,
		})
	}

	if painHealedRegex.MatchString(text) {
		signals = append(signals, EpisodeSignal{
			TrackerKey: "pain",
			Action:     EpisodeClose,
		})
	} else if containsWordBoundary(lower, "pain") {
		sig := EpisodeSignal{
			TrackerKey: "pain",
			Action:     EpisodeOpen,
			Tags:       []string{"pain"},
		}
		if v, ok := RatingNearKeyword(text, "pain"); ok {
			sig.Value = v
		}
		signals = append(signals, sig)
	}

	return signals
}

// RatingNearKeyword finds a numeric or number-word rating within the window
// following any occurrence of the keyword.
func RatingNearKeyword(text, key string) (float64, bool) {
	return ratingNearKeyword(text, strings.ToLower(text), strings.ToLower(key))
}
