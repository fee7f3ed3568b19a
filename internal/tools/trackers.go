// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewTrackersTool creates the daybook_trackers tool definition
func NewTrackersTool() mcp.Tool {
	return mcp.NewTool("daybook_trackers",
		mcp.WithDescription("List tracker definitions (mood, energy, water...) created from captures. Pass a key to also get its recent readings."),
		mcp.WithString("key",
			mcp.Description("Tracker key to fetch recent readings for, e.g. 'mood'"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum readings to return, default 20"),
		),
	)
}

// trackerSummary is the wire shape of a tracker definition.
type trackerSummary struct {
	Key          string  `json:"key"`
	Label        string  `json:"label"`
	UnitLabel    string  `json:"unit_label,omitempty"`
	UnitMin      float64 `json:"unit_min,omitempty"`
	UnitMax      float64 `json:"unit_max,omitempty"`
	DefaultValue float64 `json:"default_value,omitempty"`
}

// trackerReading is one logged value for a tracker.
type trackerReading struct {
	Title string `json:"title"`
	At    string `json:"at"`
}

// TrackersHandler handles the daybook_trackers tool
func TrackersHandler(tc *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defs, err := tc.Store.ListTrackerDefs()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list trackers: %v", err)), nil
		}

		summaries := make([]trackerSummary, 0, len(defs))
		for _, def := range defs {
			summaries = append(summaries, trackerSummary{
				Key:          def.Key,
				Label:        def.Label,
				UnitLabel:    def.UnitLabel,
				UnitMin:      def.UnitMin,
				UnitMax:      def.UnitMax,
				DefaultValue: def.DefaultValue,
			})
		}

		result := map[string]interface{}{
			"count":    len(summaries),
			"trackers": summaries,
		}

		if key := request.GetString("key", ""); key != "" {
			limit := int(request.GetFloat("limit", 20.0))
			logs, err := tc.Store.ListTrackerLogs(key, limit)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to list readings: %v", err)), nil
			}
			readings := make([]trackerReading, 0, len(logs))
			for _, ev := range logs {
				readings = append(readings, trackerReading{
					Title: ev.Title,
					At:    time.UnixMilli(ev.StartAt).Format(time.RFC3339),
				})
			}
			result["readings"] = readings
		}

		return jsonResult(result), nil
	}
}
