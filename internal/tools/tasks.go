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

// NewTasksTool creates the daybook_tasks tool definition
func NewTasksTool() mcp.Tool {
	return mcp.NewTool("daybook_tasks",
		mcp.WithDescription("List tasks extracted from captures. Filter by status to see what is still open."),
		mcp.WithString("status",
			mcp.Description("Filter by status: todo, in_progress, done. Omit for all tasks."),
		),
	)
}

// taskSummary is the wire shape of a listed task.
type taskSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	Category        string `json:"category,omitempty"`
	Subcategory     string `json:"subcategory,omitempty"`
	Importance      int    `json:"importance,omitempty"`
	EstimateMinutes int    `json:"estimate_minutes,omitempty"`
	DueAt           string `json:"due_at,omitempty"`
	ItemToken       string `json:"item_token,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// TasksHandler handles the daybook_tasks tool
func TasksHandler(tc *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := request.GetString("status", "")
		if status != "" && !database.IsValidTaskStatus(status) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid status: %s", status)), nil
		}

		tasks, err := tc.Store.ListTasks(status)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list tasks: %v", err)), nil
		}

		summaries := make([]taskSummary, 0, len(tasks))
		for i := range tasks {
			t := &tasks[i]
			s := taskSummary{
				ID:              t.ID,
				Title:           t.Title,
				Status:          t.Status,
				Category:        t.Category,
				Subcategory:     t.Subcategory,
				Importance:      t.Importance,
				EstimateMinutes: t.EstimateMinutes,
				ItemToken:       t.ItemToken,
				Notes:           t.Notes,
			}
			if t.DueAt != nil {
				s.DueAt = time.UnixMilli(*t.DueAt).Format(time.RFC3339)
			}
			summaries = append(summaries, s)
		}
		return jsonResult(map[string]interface{}{
			"count": len(summaries),
			"tasks": summaries,
		}), nil
	}
}
