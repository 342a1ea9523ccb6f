package mcp

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolServer is a registry of MCP tools that can be called in-process or
// served over an MCP transport.
type ToolServer struct {
	log     *slog.Logger
	name    string
	version string

	mu    sync.RWMutex
	tools map[string]*registeredTool
}

type registeredTool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

// NewToolServer creates an empty tool server.
func NewToolServer(log *slog.Logger, name, version string) *ToolServer {
	return &ToolServer{
		log:     log.With("component", "mcp_server", "server", name),
		name:    name,
		version: version,
		tools:   make(map[string]*registeredTool, 4),
	}
}

// AddTool registers a tool, replacing any tool with the same name.
func (s *ToolServer) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools[tool.Name] = &registeredTool{tool: tool, handler: handler}
}

// Name returns the server name.
func (s *ToolServer) Name() string {
	return s.name
}

// Version returns the server version.
func (s *ToolServer) Version() string {
	return s.version
}

// Tools returns the registered tools ordered by name.
func (s *ToolServer) Tools() []*mcp.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]*mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, t.tool)
	}

	slices.SortFunc(tools, func(a, b *mcp.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})

	return tools
}

// CallTool runs a tool by name. Unknown tools and handler failures are
// reported in the result, not as an error.
func (s *ToolServer) CallTool(ctx context.Context, name string, input map[string]any) (*mcp.CallToolResult, error) {
	s.mu.RLock()
	t, exists := s.tools[name]
	s.mu.RUnlock()

	if !exists {
		return ErrorResult("Tool not found: " + name), nil
	}

	req, err := NewCallToolRequest(name, input)
	if err != nil {
		//nolint:nilerr // the failure is reported in the result
		return ErrorResult("Failed to marshal input: " + err.Error()), nil
	}

	result, err := t.handler(ctx, req)
	if err != nil {
		s.log.Warn("Tool execution failed", "tool", name, "error", err)

		//nolint:nilerr // the failure is reported in the result
		return ErrorResult("Tool execution failed: " + err.Error()), nil
	}

	return result, nil
}

// Server builds an SDK server carrying every registered tool.
func (s *ToolServer) Server() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.version}, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		server.AddTool(t.tool, t.handler)
	}

	return server
}

// Serve runs the server on transport until the client disconnects or ctx
// is done.
func (s *ToolServer) Serve(ctx context.Context, transport mcp.Transport) error {
	s.log.Info("Serving MCP tools", "tools", len(s.Tools()))

	return s.Server().Run(ctx, transport)
}
