// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/daybook-io/daybook/internal/database"
)

// NewEventsTool creates the daybook_events tool definition
func NewEventsTool() mcp.Tool {
	return mcp.NewTool("daybook_events",
		mcp.WithDescription("List events for a day or date range: timed events, work blocks, meals, workouts, tracker logs and episodes. Defaults to today."),
		mcp.WithString("from",
			mcp.Description("Start of range, YYYY-MM-DD or RFC3339. Defaults to today at midnight."),
		),
		mcp.WithString("to",
			mcp.Description("End of range, YYYY-MM-DD or RFC3339. Defaults to the end of the 'from' day."),
		),
		mcp.WithString("kind",
			mcp.Description("Filter by kind: event, log, episode"),
		),
	)
}

// eventSummary is the wire shape of a listed event.
type eventSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Kind        string   `json:"kind"`
	StartAt     string   `json:"start_at"`
	EndAt       string   `json:"end_at,omitempty"`
	Active      bool     `json:"active,omitempty"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	People      []string `json:"people,omitempty"`
	Location    string   `json:"location,omitempty"`
	TrackerKey  string   `json:"tracker_key,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// EventsHandler handles the daybook_events tool
func EventsHandler(tc *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fromMs, toMs, err := parseRange(
			request.GetString("from", ""),
			request.GetString("to", ""),
		)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		kind := request.GetString("kind", "")
		if kind != "" && !database.IsValidEventKind(kind) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid kind: %s", kind)), nil
		}

		events, err := tc.Store.ListEventsBetween(fromMs, toMs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list events: %v", err)), nil
		}

		summaries := make([]eventSummary, 0, len(events))
		for i := range events {
			if kind != "" && events[i].Kind != kind {
				continue
			}
			summaries = append(summaries, summarizeEvent(&events[i]))
		}
		return jsonResult(map[string]interface{}{
			"from":   time.UnixMilli(fromMs).Format(time.RFC3339),
			"to":     time.UnixMilli(toMs).Format(time.RFC3339),
			"count":  len(summaries),
			"events": summaries,
		}), nil
	}
}

// summarizeEvent converts a stored event into its wire shape.
func summarizeEvent(ev *database.Event) eventSummary {
	s := eventSummary{
		ID:          ev.ID,
		Title:       ev.Title,
		Kind:        ev.Kind,
		StartAt:     time.UnixMilli(ev.StartAt).Format(time.RFC3339),
		Active:      ev.Active,
		Category:    ev.Category,
		Subcategory: ev.Subcategory,
		Tags:        ev.Tags,
		People:      ev.People,
		Location:    ev.Location,
		Notes:       ev.Notes,
	}
	if ev.EndAt != 0 {
		s.EndAt = time.UnixMilli(ev.EndAt).Format(time.RFC3339)
	}
	if ev.TrackerKey != nil {
		s.TrackerKey = *ev.TrackerKey
	}
	return s
}

// parseRange resolves from/to strings into a ms window. An empty range
// means today in the local timezone.
func parseRange(from, to string) (int64, int64, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	fromTime := dayStart
	if from != "" {
		t, err := parseTimeArg(from)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid from: %v", err)
		}
		fromTime = t
	}

	toTime := fromTime.Add(24 * time.Hour)
	if to != "" {
		t, err := parseTimeArg(to)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid to: %v", err)
		}
		// A bare date means the whole day is included.
		if len(to) == len("2006-01-02") {
			t = t.Add(24 * time.Hour)
		}
		toTime = t
	}

	if !toTime.After(fromTime) {
		return 0, 0, fmt.Errorf("to must be after from")
	}
	return fromTime.UnixMilli(), toTime.UnixMilli(), nil
}

// parseTimeArg accepts RFC3339 or a bare local date.
func parseTimeArg(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
