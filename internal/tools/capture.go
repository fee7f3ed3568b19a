// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/daybook-io/daybook/internal/pipeline"
)

// NewCaptureTool creates the daybook_capture tool definition
func NewCaptureTool() mcp.Tool {
	return mcp.NewTool("daybook_capture",
		mcp.WithDescription("Ingest a free-form life-log note. The text is parsed into structured records: events, tasks, tracker logs (mood, energy, water...), episodes (sick, period...), meals, workouts and habit completions. An optional YAML frontmatter block can override category, tags, importance or difficulty."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The raw capture text, optionally starting with a '---' YAML frontmatter block"),
		),
		mcp.WithString("captured_at",
			mcp.Description("When the note was captured, RFC3339. Defaults to now. Use to backdate dictated notes."),
		),
	)
}

// captureResult is what the capture tool returns to the model.
type captureResult struct {
	*pipeline.Report
	JournalPath string `json:"journal_path,omitempty"`
}

// CaptureHandler handles the daybook_capture tool
func CaptureHandler(tc *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if strings.TrimSpace(text) == "" {
			return mcp.NewToolResultError("capture text is empty"), nil
		}

		anchorMs := time.Now().UnixMilli()
		if raw := request.GetString("captured_at", ""); raw != "" {
			capturedAt, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid captured_at: %v", err)), nil
			}
			anchorMs = capturedAt.UnixMilli()
		}

		var report *pipeline.Report
		runErr := tc.withCaptureLock(func() error {
			var err error
			report, err = tc.Pipeline.Run(ctx, text, anchorMs)
			return err
		})
		if runErr != nil && report == nil {
			return mcp.NewToolResultError(fmt.Sprintf("capture failed: %v", runErr)), nil
		}

		result := &captureResult{Report: report}
		if tc.Journal != nil {
			result.JournalPath = exportToJournal(tc, report.NoteID)
		}

		if runErr != nil {
			// The parse failed but tracker logs and episodes were still
			// applied; surface both the error and what was materialized.
			out := jsonResult(result)
			return mcp.NewToolResultText(fmt.Sprintf("capture parse failed: %v\n%s",
				runErr, out.Content[0].(mcp.TextContent).Text)), nil
		}
		return jsonResult(result), nil
	}
}

// exportToJournal writes the capture markdown and records its path.
// Export failures are logged, never fatal: the records are already in
// the database.
func exportToJournal(tc *ToolContext, noteID string) string {
	note, err := tc.Store.GetNote(noteID)
	if err != nil {
		log.Printf("Journal export skipped, note %s not found: %v", noteID, err)
		return ""
	}

	relPath, err := tc.Journal.ExportNote(note)
	if err != nil {
		log.Printf("Journal export failed for note %s: %v", noteID, err)
		return ""
	}
	if err := tc.Store.SetNoteFilePath(noteID, relPath); err != nil {
		log.Printf("Failed to record journal path for note %s: %v", noteID, err)
	}
	return relPath
}
