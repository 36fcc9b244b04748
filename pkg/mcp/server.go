// Package mcp exposes component analysis as MCP tools over stdio.
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/rendermap/pkg/mcplog"
	"github.com/gnana997/rendermap/pkg/pipeline"
)

const serverVersion = "0.1.0"

// Server implements the rendermap MCP server.
type Server struct {
	mcpServer *server.MCPServer
	pipeline  *pipeline.Pipeline
	logger    *mcplog.Logger // nil disables call logging

	// runMu serialises pipeline runs; the walker cache is not safe for
	// concurrent walks.
	runMu sync.Mutex
}

// NewServer creates a server backed by p. callLog may be nil.
func NewServer(p *pipeline.Pipeline, callLog *mcplog.Logger) *Server {
	s := &Server{pipeline: p, logger: callLog}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if callLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("rendermap", serverVersion, opts...)
	s.mcpServer.AddTools(
		server.ServerTool{Tool: analyzeComponentsTool(), Handler: s.handleAnalyzeComponents},
		server.ServerTool{Tool: componentOrderTool(), Handler: s.handleComponentOrder},
		server.ServerTool{Tool: componentDetailsTool(), Handler: s.handleComponentDetails},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
