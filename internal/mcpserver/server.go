// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the reading queue and sync controls for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/engine"
	"github.com/starford/raido/internal/storage"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp    *server.MCPServer
	store  storage.Provider
	orch   *engine.Orchestrator
	folder string
}

// New creates a new MCP server with all Raido tools registered.
func New(store storage.Provider, orch *engine.Orchestrator, folder string) *Server {
	s := &Server{store: store, orch: orch, folder: folder}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_queue",
		mcp.WithDescription("List the unread (incomplete) checklist items across all documents in the reading queue."),
	), s.listQueue)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of a reading-queue document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. read later/news.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("sync_now",
		mcp.WithDescription("Run one feed sync cycle immediately and return its summary."),
	), s.syncNow)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listQueue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, err := s.store.ListFolder(s.folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	for _, path := range paths {
		data, readErr := s.store.Read(path)
		if readErr != nil {
			continue
		}
		var pending []string
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(line, "- [ ]") {
				pending = append(pending, line)
			}
		}
		if len(pending) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n%s\n", path, strings.Join(pending, "\n"))
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("reading queue is empty"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) syncNow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.orch.RunCycle(ctx, time.Now().UTC())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum.FinishedAt = time.Now().UTC()
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
