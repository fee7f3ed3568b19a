// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package parser turns a capture body into candidate events and tasks.
// Two strategies share one result schema: a local heuristic parser and an
// assisted parser backed by a chat-completion API. A selector picks which
// one runs based on the configured mode.
package parser

import (
	"context"

	"github.com/daybook-io/daybook/internal/estimate"
)

// Item kinds
const (
	KindEvent   = "event"
	KindTask    = "task"
	KindLog     = "log"
	KindEpisode = "episode"
)

// Item is one candidate record produced by a parse strategy. It is
// transient; the materializer turns it into persisted records.
type Item struct {
	Kind         string   `json:"kind"`
	Title        string   `json:"title"`
	StartAt      *int64   `json:"start_at,omitempty"` // ms epoch; nil when untimed
	EndAt        *int64   `json:"end_at,omitempty"`
	ExplicitTime bool     `json:"explicit_time,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	People       []string `json:"people,omitempty"`
	Location     string   `json:"location,omitempty"`
	Category     string   `json:"category,omitempty"`
	Subcategory  string   `json:"subcategory,omitempty"`
	Importance   int      `json:"importance,omitempty"` // 0 = unset
	Difficulty   int      `json:"difficulty,omitempty"` // 0 = unset

	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Notes           string `json:"notes,omitempty"`

	// Log fields
	TrackerKey   string  `json:"tracker_key,omitempty"`
	TrackerValue float64 `json:"tracker_value,omitempty"`

	// Task fields
	Checklist       []string `json:"checklist,omitempty"`
	EstimateMinutes int      `json:"estimate_minutes,omitempty"`
	DueAt           *int64   `json:"due_at,omitempty"`
	Token           string   `json:"token,omitempty"`
	Completed       bool     `json:"completed,omitempty"`
}

// Result is the shared output shape of both strategies.
type Result struct {
	Events   []Item             `json:"events"`
	Tasks    []Item             `json:"tasks"`
	Meals    []estimate.Meal    `json:"meals,omitempty"`
	Workouts []estimate.Workout `json:"workouts,omitempty"`
}

// Empty reports whether the result carries nothing at all.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	return len(r.Events) == 0 && len(r.Tasks) == 0 && len(r.Meals) == 0 && len(r.Workouts) == 0
}

// Strategy is one way of parsing a capture body.
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string

	// Parse produces candidate records for the text anchored at anchorMs
	Parse(ctx context.Context, text string, anchorMs int64) (*Result, error)
}
