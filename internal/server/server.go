// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package server wires the capture pipeline into an MCP stdio server.
package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/daybook-io/daybook/internal/tools"
)

// MCPServer wraps the mcp-go server with our configuration
type MCPServer struct {
	mcpServer *server.MCPServer
	toolCtx   *tools.ToolContext
}

// NewMCPServer creates a new MCP server instance and registers the
// daybook tools.
func NewMCPServer(toolCtx *tools.ToolContext) *MCPServer {
	mcpServer := server.NewMCPServer(
		"Daybook",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &MCPServer{
		mcpServer: mcpServer,
		toolCtx:   toolCtx,
	}
	srv.registerTools()
	return srv
}

// registerTools registers the daybook tool set.
func (s *MCPServer) registerTools() {
	// daybook_capture: ingest a note - "Log this"
	s.mcpServer.AddTool(tools.NewCaptureTool(), tools.CaptureHandler(s.toolCtx))

	// daybook_events: list the day's materialized records
	s.mcpServer.AddTool(tools.NewEventsTool(), tools.EventsHandler(s.toolCtx))

	// daybook_tasks: list extracted tasks
	s.mcpServer.AddTool(tools.NewTasksTool(), tools.TasksHandler(s.toolCtx))

	// daybook_trackers: tracker definitions and readings
	s.mcpServer.AddTool(tools.NewTrackersTool(), tools.TrackersHandler(s.toolCtx))

	// daybook_stop: stop the active session
	s.mcpServer.AddTool(tools.NewStopTool(), tools.StopHandler(s.toolCtx))
}

// ServeStdio runs the server over stdin/stdout until the client hangs up.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// GetMCPServer returns the underlying MCP server
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
