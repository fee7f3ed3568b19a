// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package signal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// 3pm, 3:30 pm, 15:00
	clockRegex = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

	// at 3, at 3:30pm
	atTimeRegex = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

	// 3-5pm, 3:30-5:00, from 3 to 5pm
	rangeRegex     = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:-|–|to)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	fromToRegex    = regexp.MustCompile(`(?i)\bfrom\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s+(?:to|until|till)\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	meridiemRegex  = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b`)
	clockColonOnly = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)

	multiSegmentWords = []string{
		"later", "tomorrow", "tonight", "yesterday", "this morning",
		"this afternoon", "this evening", "after that", "afterwards",
		"then i", "earlier",
	}
)

// ClockTime is a wall-clock reference found in text.
type ClockTime struct {
	Hour        int
	Minute      int
	HasMeridiem bool
	PM          bool
}

// HasExplicitTime reports whether the text carries an explicit at-time or
// time-range phrase.
func HasExplicitTime(text string) bool {
	if meridiemRegex.MatchString(text) {
		return true
	}
	if clockColonOnly.MatchString(text) {
		return true
	}
	if atTimeRegex.MatchString(text) {
		return true
	}
	if fromToRegex.MatchString(text) {
		return true
	}
	return false
}

// HasMultiSegmentKeyword reports whether the text contains a temporal
// keyword that splits it into separately timed segments.
func HasMultiSegmentKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range multiSegmentWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// ExtractTimeRange finds an explicit start-end range ("3-5pm", "from 3 to
// 5"). A meridiem stated only on the end applies to both.
func ExtractTimeRange(text string) (start, end ClockTime, ok bool) {
	m := fromToRegex.FindStringSubmatch(text)
	if m == nil {
		m = rangeRegex.FindStringSubmatch(text)
	}
	if m == nil {
		return ClockTime{}, ClockTime{}, false
	}

	start = buildClock(m[1], m[2], m[3])
	end = buildClock(m[4], m[5], m[6])

	if !start.HasMeridiem && end.HasMeridiem {
		start.HasMeridiem = true
		start.PM = end.PM
		// 11-1pm crosses noon; the start stays AM
		if start.Hour > end.Hour {
			start.PM = !end.PM
		}
	}

	return start, end, true
}

// ExtractAtTime finds a single "at HH[:MM]" reference.
func ExtractAtTime(text string) (ClockTime, bool) {
	m := atTimeRegex.FindStringSubmatch(text)
	if m == nil {
		m = meridiemClock(text)
	}
	if m == nil {
		return ClockTime{}, false
	}
	return buildClock(m[1], m[2], m[3]), true
}

// meridiemClock matches a bare clock with meridiem ("3pm") anywhere.
func meridiemClock(text string) []string {
	for _, m := range clockRegex.FindAllStringSubmatch(text, -1) {
		if m[3] != "" {
			return m
		}
	}
	return nil
}

func buildClock(hourStr, minStr, meridiem string) ClockTime {
	hour, _ := strconv.Atoi(hourStr)
	minute := 0
	if minStr != "" {
		minute, _ = strconv.Atoi(minStr)
	}
	ct := ClockTime{Hour: hour, Minute: minute}
	if meridiem != "" {
		ct.HasMeridiem = true
		ct.PM = strings.EqualFold(meridiem, "pm")
	}
	return ct
}

// Resolve places a clock reference on the anchor's local day. Without a
// meridiem, hours 1-7 are read as afternoon.
func (ct ClockTime) Resolve(anchor time.Time) time.Time {
	hour := ct.Hour
	if ct.HasMeridiem {
		if ct.PM && hour < 12 {
			hour += 12
		}
		if !ct.PM && hour == 12 {
			hour = 0
		}
	} else if hour >= 1 && hour <= 7 {
		hour += 12
	}

	return time.Date(anchor.Year(), anchor.Month(), anchor.Day(), hour, ct.Minute, 0, 0, anchor.Location())
}
