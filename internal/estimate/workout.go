// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package estimate

import (
	"regexp"
	"strconv"
	"strings"
)

// Exercise is one parsed movement.
type Exercise struct {
	Name        string  `json:"name"`
	Sets        int     `json:"sets,omitempty"`
	Reps        int     `json:"reps,omitempty"`
	WeightLb    float64 `json:"weight_lb,omitempty"`
	DistanceMi  float64 `json:"distance_mi,omitempty"`
	DurationMin int     `json:"duration_min,omitempty"`
}

// Workout is a parsed workout with its exercises.
type Workout struct {
	Title     string     `json:"title"`
	Exercises []Exercise `json:"exercises"`
}

var (
	workoutContextRegex = regexp.MustCompile(`(?i)\b(workout|gym|lifted|lifting|trained|training|exercise|ran|run|jogged|swam|cycled|yoga)\b`)

	// squats 3x8, bench 5x5 @ 135
	setsRepsRegex = regexp.MustCompile(`(?i)\b([a-z][a-z ]{1,24}?)\s+(\d{1,2})\s*x\s*(\d{1,3})(?:\s*(?:@|at)\s*(\d{2,3}))?\b`)
	// ran 3 miles, cycled 10mi
	distanceRegex = regexp.MustCompile(`(?i)\b(ran|run|jogged|walked|cycled|swam)\s+(\d+(?:\.\d+)?)\s*(?:miles?|mi)\b`)
	// 30 min yoga / yoga for 30 minutes
	timedRegex = regexp.MustCompile(`(?i)\b(?:(\d{1,3})\s*min(?:ute)?s?\s+([a-z]+)|([a-z]+)\s+for\s+(\d{1,3})\s*min(?:ute)?s?)\b`)
)

// ParseWorkoutFromText extracts a workout: sets x reps lines, distance
// cardio, and timed activities. Returns false when the text has no workout
// context at all.
func ParseWorkoutFromText(text string) (*Workout, bool) {
	if !workoutContextRegex.MatchString(text) {
		return nil, false
	}

	w := &Workout{Title: "Workout"}

	for _, m := range setsRepsRegex.FindAllStringSubmatch(text, -1) {
		sets, _ := strconv.Atoi(m[2])
		reps, _ := strconv.Atoi(m[3])
		ex := Exercise{
			Name: strings.TrimSpace(strings.ToLower(m[1])),
			Sets: sets,
			Reps: reps,
		}
		if m[4] != "" {
			ex.WeightLb, _ = strconv.ParseFloat(m[4], 64)
		}
		w.Exercises = append(w.Exercises, ex)
	}

	for _, m := range distanceRegex.FindAllStringSubmatch(text, -1) {
		dist, _ := strconv.ParseFloat(m[2], 64)
		w.Exercises = append(w.Exercises, Exercise{
			Name:       normalizeCardio(m[1]),
			DistanceMi: dist,
		})
	}

	for _, m := range timedRegex.FindAllStringSubmatch(text, -1) {
		var name string
		var minutes int
		if m[1] != "" {
			minutes, _ = strconv.Atoi(m[1])
			name = strings.ToLower(m[2])
		} else {
			name = strings.ToLower(m[3])
			minutes, _ = strconv.Atoi(m[4])
		}
		if !isActivityWord(name) {
			continue
		}
		w.Exercises = append(w.Exercises, Exercise{Name: name, DurationMin: minutes})
	}

	return w, true
}

// normalizeCardio maps verb forms to activity names.
func normalizeCardio(verb string) string {
	switch strings.ToLower(verb) {
	case "ran", "run", "jogged":
		return "run"
	case "walked":
		return "walk"
	case "cycled":
		return "cycling"
	case "swam":
		return "swim"
	default:
		return strings.ToLower(verb)
	}
}

// isActivityWord filters the timed-activity capture to known movements so
// "20 min meeting" is not an exercise.
func isActivityWord(name string) bool {
	switch name {
	case "yoga", "stretching", "rowing", "cardio", "plank", "cycling", "run", "running", "swim", "swimming", "pilates":
		return true
	default:
		return false
	}
}
