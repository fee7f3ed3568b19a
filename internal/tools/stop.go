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

// NewStopTool creates the daybook_stop tool definition
func NewStopTool() mcp.Tool {
	return mcp.NewTool("daybook_stop",
		mcp.WithDescription("Stop the currently active session, if any. Use when the user says they are done with what they were doing."),
		mcp.WithString("at",
			mcp.Description("When the session ended, RFC3339. Defaults to now."),
		),
	)
}

// StopHandler handles the daybook_stop tool
func StopHandler(tc *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stopMs := time.Now().UnixMilli()
		if raw := request.GetString("at", ""); raw != "" {
			at, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid at: %v", err)), nil
			}
			stopMs = at.UnixMilli()
		}

		sessions, err := tc.Store.ListActiveSessions()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list active sessions: %v", err)), nil
		}
		if len(sessions) == 0 {
			return mcp.NewToolResultText("No active session."), nil
		}

		if err := tc.Store.StopActiveSessionsExcept("", stopMs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to stop session: %v", err)), nil
		}

		stopped := make([]string, 0, len(sessions))
		for i := range sessions {
			stopped = append(stopped, sessions[i].Title)
		}
		return jsonResult(map[string]interface{}{
			"stopped_at": time.UnixMilli(stopMs).Format(time.RFC3339),
			"stopped":    stopped,
		}), nil
	}
}
