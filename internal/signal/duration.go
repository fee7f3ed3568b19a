// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package signal

import (
	"regexp"
	"strconv"
)

const (
	// MinDurationMinutes is the lower clamp for extracted durations
	MinDurationMinutes = 1
	// MaxDurationMinutes is the upper clamp for extracted durations (one day)
	MaxDurationMinutes = 1440
)

var (
	// ~1h30m, ~2h
	durationHoursMinutesRegex = regexp.MustCompile(`~(\d{1,2})h(?:(\d{1,2})m?)?\b`)
	// ~1.5h
	durationFractionalRegex = regexp.MustCompile(`~(\d{1,2}\.\d+)h\b`)
	// ~45 min, ~45mins, ~45 minutes
	durationMinutesRegex = regexp.MustCompile(`~(\d{1,4})\s*min(?:ute)?s?\b`)
)

// ExtractDuration finds an explicit ~duration marker and returns the value
// in minutes, clamped to [1, 1440]. The first matching form wins.
func ExtractDuration(text string) (int, bool) {
	if m := durationFractionalRegex.FindStringSubmatch(text); m != nil {
		hours, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return clampInt(int(hours*60), MinDurationMinutes, MaxDurationMinutes), true
		}
	}

	if m := durationHoursMinutesRegex.FindStringSubmatch(text); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes := 0
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
		return clampInt(hours*60+minutes, MinDurationMinutes, MaxDurationMinutes), true
	}

	if m := durationMinutesRegex.FindStringSubmatch(text); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		return clampInt(minutes, MinDurationMinutes, MaxDurationMinutes), true
	}

	return 0, false
}
