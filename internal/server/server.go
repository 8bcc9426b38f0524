// Package server provides the MCP server wrapper and the WebSocket debate
// stream server.
package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer wraps the MCP server with dependencies and lifecycle management.
type MCPServer struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// NewMCP creates a new MCP server with the given version and logger.
func NewMCP(version string, logger *slog.Logger) *MCPServer {
	impl := &mcp.Implementation{
		Name:    "quorum",
		Version: version,
	}

	return &MCPServer{
		mcp:    mcp.NewServer(impl, nil),
		logger: logger,
	}
}

// Run starts the server on stdio transport and blocks until disconnect or
// context cancellation.
func (s *MCPServer) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Underlying returns the MCP server for tool registration.
func (s *MCPServer) Underlying() *mcp.Server {
	return s.mcp
}

// Setup adds middleware to the server (logging, error handling).
func (s *MCPServer) Setup() {
	s.mcp.AddReceivingMiddleware(LoggingMiddleware(s.logger))
}
