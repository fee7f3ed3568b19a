// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/daybook-io/daybook/internal/config"
	"github.com/daybook-io/daybook/internal/database"
	"github.com/daybook-io/daybook/internal/journal"
	"github.com/daybook-io/daybook/internal/locking"
	"github.com/daybook-io/daybook/internal/parser"
	"github.com/daybook-io/daybook/internal/pipeline"
	"github.com/daybook-io/daybook/internal/store"
	"github.com/daybook-io/daybook/internal/tools"
)

// testSetup creates a full stack on a temp sqlite database: store,
// local-mode pipeline, capture lock and journal, wired into a ToolContext
// the way cmd/server does it.
type testSetup struct {
	Store   *store.Store
	ToolCtx *tools.ToolContext
}

func setupTestEnvironment(t *testing.T) *testSetup {
	tempDir := t.TempDir()

	db, err := gorm.Open(sqlite.Open(filepath.Join(tempDir, "daybook.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, locking.MigrateLocks(db))

	st := store.NewStore(db)
	p := pipeline.New(st, parser.NewSelector(config.ParserConfig{Mode: config.ParserModeLocal}))

	j, err := journal.Open(filepath.Join(tempDir, "journal"))
	require.NoError(t, err)

	toolCtx := tools.NewToolContext(st, p).
		WithLocker(locking.NewLocker(db)).
		WithJournal(j)

	return &testSetup{Store: st, ToolCtx: toolCtx}
}

func getResultText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if text, ok := result.Content[0].(mcp.TextContent); ok {
		return text.Text
	}
	return ""
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	return result
}

func TestCaptureToolEndToEnd(t *testing.T) {
	setup := setupTestEnvironment(t)
	capture := tools.CaptureHandler(setup.ToolCtx)

	anchor := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	result := callTool(t, capture, map[string]interface{}{
		"text":        "Had lunch with Sam at noon. Mood 7. Need to email the landlord",
		"captured_at": anchor.Format(time.RFC3339),
	})
	assert.False(t, result.IsError)

	text := getResultText(result)
	assert.Contains(t, text, "note_id")
	assert.Contains(t, text, "\"strategy\": \"local\"")
	assert.Contains(t, text, "journal_path")

	tasks, err := setup.Store.ListTasks("")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Contains(t, tasks[0].Title, "Email the landlord")

	logs, err := setup.Store.ListTrackerLogs("mood", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "mood: 7", logs[0].Title)
}

func TestCaptureToolRejectsEmptyText(t *testing.T) {
	setup := setupTestEnvironment(t)
	capture := tools.CaptureHandler(setup.ToolCtx)

	result := callTool(t, capture, map[string]interface{}{"text": "   "})
	assert.True(t, result.IsError)
}

func TestCaptureToolRejectsBadTimestamp(t *testing.T) {
	setup := setupTestEnvironment(t)
	capture := tools.CaptureHandler(setup.ToolCtx)

	result := callTool(t, capture, map[string]interface{}{
		"text":        "walked the dog",
		"captured_at": "yesterday",
	})
	assert.True(t, result.IsError)
}

func TestEventsToolListsCapturedDay(t *testing.T) {
	setup := setupTestEnvironment(t)
	capture := tools.CaptureHandler(setup.ToolCtx)
	events := tools.EventsHandler(setup.ToolCtx)

	anchor := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	result := callTool(t, capture, map[string]interface{}{
		"text":        "Morning run 7-8am. Lunch with Ana at noon",
		"captured_at": anchor.Format(time.RFC3339),
	})
	require.False(t, result.IsError)

	result = callTool(t, events, map[string]interface{}{
		"from": "2025-03-10",
	})
	assert.False(t, result.IsError)
	text := getResultText(result)
	assert.Contains(t, text, "Morning run")
	assert.Contains(t, text, "Ana")
}

func TestEventsToolKindFilter(t *testing.T) {
	setup := setupTestEnvironment(t)
	capture := tools.CaptureHandler(setup.ToolCtx)
	events := tools.EventsHandler(setup.ToolCtx)

	anchor := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	result := callTool(t, capture, map[string]interface{}{
		"text":        "Reading in the park 1-2pm. Energy 6",
		"captured_at": anchor.Format(time.RFC3339),
	})
	require.False(t, result.IsError)

	result = callTool(t, events, map[string]interface{}{
		"from": "2025-03-10",
		"kind": "log",
	})
	assert.False(t, result.IsError)
	text := getResultText(result)
	assert.Contains(t, text, "energy: 6")
	assert.NotContains(t, text, "Reading in the park")
}

func TestEventsToolInvalidKind(t *testing.T) {
	setup := setupTestEnvironment(t)
	events := tools.EventsHandler(setup.ToolCtx)

	result := callTool(t, events, map[string]interface{}{"kind": "meeting"})
	assert.True(t, result.IsError)
}

func TestTasksToolStatusFilter(t *testing.T) {
	setup := setupTestEnvironment(t)
	capture := tools.CaptureHandler(setup.ToolCtx)
	tasksTool := tools.TasksHandler(setup.ToolCtx)

	anchor := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	result := callTool(t, capture, map[string]interface{}{
		"text":        "Need to renew passport. Need to buy milk",
		"captured_at": anchor.Format(time.RFC3339),
	})
	require.False(t, result.IsError)

	result = callTool(t, tasksTool, map[string]interface{}{"status": "todo"})
	assert.False(t, result.IsError)
	text := getResultText(result)
	assert.Contains(t, text, "Renew passport")
	assert.Contains(t, text, "Buy milk")

	result = callTool(t, tasksTool, map[string]interface{}{"status": "done"})
	assert.False(t, result.IsError)
	assert.Contains(t, getResultText(result), "\"count\": 0")

	result = callTool(t, tasksTool, map[string]interface{}{"status": "someday"})
	assert.True(t, result.IsError)
}

func TestTrackersToolWithReadings(t *testing.T) {
	setup := setupTestEnvironment(t)
	capture := tools.CaptureHandler(setup.ToolCtx)
	trackers := tools.TrackersHandler(setup.ToolCtx)

	anchor := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	result := callTool(t, capture, map[string]interface{}{
		"text":        "Mood 8 today. #water(32)",
		"captured_at": anchor.Format(time.RFC3339),
	})
	require.False(t, result.IsError)

	result = callTool(t, trackers, map[string]interface{}{"key": "mood"})
	assert.False(t, result.IsError)
	text := getResultText(result)
	assert.Contains(t, text, "\"key\": \"mood\"")
	assert.Contains(t, text, "\"key\": \"water\"")
	assert.Contains(t, text, "mood: 8")
}

func TestStopToolStopsActiveSession(t *testing.T) {
	setup := setupTestEnvironment(t)
	capture := tools.CaptureHandler(setup.ToolCtx)
	stop := tools.StopHandler(setup.ToolCtx)

	anchor := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	result := callTool(t, capture, map[string]interface{}{
		"text":        "Started writing my essay",
		"captured_at": anchor.Format(time.RFC3339),
	})
	require.False(t, result.IsError)

	sessions, err := setup.Store.ListActiveSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	stopAt := anchor.Add(90 * time.Minute)
	result = callTool(t, stop, map[string]interface{}{
		"at": stopAt.Format(time.RFC3339),
	})
	assert.False(t, result.IsError)
	assert.Contains(t, getResultText(result), "essay")

	sessions, err = setup.Store.ListActiveSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)

	stopped, err := setup.Store.GetEvent(sessions0ID(t, setup))
	require.NoError(t, err)
	assert.Equal(t, stopAt.UnixMilli(), stopped.EndAt)
}

// sessions0ID finds the essay event id after it was stopped.
func sessions0ID(t *testing.T, setup *testSetup) string {
	events, err := setup.Store.ListEvents()
	require.NoError(t, err)
	for i := range events {
		if events[i].Kind == database.EventKindEvent {
			return events[i].ID
		}
	}
	t.Fatal("no event found")
	return ""
}

func TestStopToolNoActiveSession(t *testing.T) {
	setup := setupTestEnvironment(t)
	stop := tools.StopHandler(setup.ToolCtx)

	result := callTool(t, stop, map[string]interface{}{})
	assert.False(t, result.IsError)
	assert.Contains(t, getResultText(result), "No active session")
}

func TestCaptureSerializedUnderLock(t *testing.T) {
	setup := setupTestEnvironment(t)
	capture := tools.CaptureHandler(setup.ToolCtx)

	// A held lock from another process makes the capture fail fast
	// instead of interleaving pipeline passes.
	acquired, err := setup.ToolCtx.Locker.Acquire(locking.ScopeCapture, "other-process")
	require.NoError(t, err)
	require.True(t, acquired)

	result := callTool(t, capture, map[string]interface{}{"text": "walked the dog"})
	assert.True(t, result.IsError)
	assert.Contains(t, getResultText(result), "busy")

	require.NoError(t, setup.ToolCtx.Locker.Release(locking.ScopeCapture, "other-process"))
	result = callTool(t, capture, map[string]interface{}{"text": "walked the dog"})
	assert.False(t, result.IsError)
}
