// Package mcp exposes notesmith search and sync as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ahvonen/notesmith/internal/engine"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Engine is the slice of engine behavior the MCP tools need.
type Engine interface {
	Search(ctx context.Context, req engine.SearchRequest) ([]engine.SearchResult, error)
	Sync(ctx context.Context, force bool) (*engine.SyncResult, error)
	Documents(ctx context.Context) ([]engine.DocumentInfo, error)
	Recent(ctx context.Context, limit int) ([]engine.DocumentInfo, error)
}

// Server wraps an MCP server that exposes the notes index to agents.
type Server struct {
	engine Engine
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server around an engine.
func NewServer(eng Engine) *Server {
	s := &Server{engine: eng}

	s.mcp = server.NewMCPServer(
		"notesmith",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchNotesTool, s.handleSearchNotes)
	s.mcp.AddTool(syncNotesTool, s.handleSyncNotes)
	s.mcp.AddTool(getNoteTool, s.handleGetNote)
	s.mcp.AddTool(recentNotesTool, s.handleRecentNotes)
}

// Serve starts the MCP server on stdio. Stdout carries MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
