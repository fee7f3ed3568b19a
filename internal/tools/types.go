// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package tools defines the MCP tools exposed by the daybook server.
package tools

import (
	"encoding/json"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/daybook-io/daybook/internal/journal"
	"github.com/daybook-io/daybook/internal/locking"
	"github.com/daybook-io/daybook/internal/pipeline"
	"github.com/daybook-io/daybook/internal/store"
)

// ToolContext holds shared dependencies for all tools
type ToolContext struct {
	Store    *store.Store
	Pipeline *pipeline.Pipeline
	Journal  *journal.Journal // nil when journal export is disabled
	Locker   *locking.Locker  // nil when running on a single process
	Owner    string           // lock owner id for this process
}

// NewToolContext creates a new tool context
func NewToolContext(st *store.Store, p *pipeline.Pipeline) *ToolContext {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "daybook"
	}
	return &ToolContext{
		Store:    st,
		Pipeline: p,
		Owner:    hostname,
	}
}

// WithJournal attaches a journal for capture export
func (tc *ToolContext) WithJournal(j *journal.Journal) *ToolContext {
	tc.Journal = j
	return tc
}

// WithLocker attaches a cross-process capture lock
func (tc *ToolContext) WithLocker(l *locking.Locker) *ToolContext {
	tc.Locker = l
	return tc
}

// withCaptureLock runs fn under the capture lock when one is configured.
func (tc *ToolContext) withCaptureLock(fn func() error) error {
	if tc.Locker == nil {
		return fn()
	}
	return tc.Locker.WithLock(locking.ScopeCapture, tc.Owner, fn)
}

// jsonResult marshals v as an indented JSON tool result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal tool result: %v", err)
		return mcp.NewToolResultError("failed to encode result")
	}
	return mcp.NewToolResultText(string(data))
}
