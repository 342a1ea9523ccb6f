package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/ipclink-go/internal/process"
)

func echoTool() (*mcp.Tool, mcp.ToolHandler) {
	tool := NewTool("echo", "echoes text", SimpleSchema(map[string]string{"text": "string"}))

	return tool, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Text string `json:"text"`
		}
		if err := ParseArguments(req, &args); err != nil {
			return nil, err
		}

		return TextResult("echo: " + args.Text), nil
	}
}

func TestToolServer_Metadata(t *testing.T) {
	server := NewToolServer(slog.Default(), "demo", "1.2.3")

	require.Equal(t, "demo", server.Name())
	require.Equal(t, "1.2.3", server.Version())
	require.Empty(t, server.Tools())
}

func TestToolServer_CallTool(t *testing.T) {
	server := NewToolServer(slog.Default(), "demo", "1.0.0")
	server.AddTool(echoTool())

	tools := server.Tools()
	require.Len(t, tools, 1)
	require.Equal(t, "echo", tools[0].Name)

	result, err := server.CallTool(context.Background(), "echo", map[string]any{"text": "hello"})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "echo: hello", ResultText(result))

	missing, err := server.CallTool(context.Background(), "unknown", nil)
	require.NoError(t, err)
	require.True(t, missing.IsError)
	require.Equal(t, "Tool not found: unknown", ResultText(missing))
}

func TestToolServer_CallTool_HandlerError(t *testing.T) {
	server := NewToolServer(slog.Default(), "demo", "1.0.0")
	server.AddTool(
		NewTool("fails", "always fails", SimpleSchema(nil)),
		func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("boom")
		},
	)

	result, err := server.CallTool(context.Background(), "fails", map[string]any{})
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, "Tool execution failed: boom", ResultText(result))
}

func TestToolServer_ToolsSortedByName(t *testing.T) {
	server := NewToolServer(slog.Default(), "demo", "1.0.0")

	for _, name := range []string{"zeta", "alpha", "mid"} {
		server.AddTool(NewTool(name, name, SimpleSchema(nil)), nil)
	}

	var names []string
	for _, tool := range server.Tools() {
		names = append(names, tool.Name)
	}

	require.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestSimpleSchema(t *testing.T) {
	schema := SimpleSchema(map[string]string{
		"command": "string",
		"args":    "[]string",
		"count":   "int",
		"ratio":   "float64",
		"verbose": "bool",
	}, "args", "verbose")

	require.Equal(t, "object", schema.Type)
	require.ElementsMatch(t, []string{"command", "count", "ratio"}, schema.Required)
	require.Equal(t, "array", schema.Properties["args"].Type)
	require.Equal(t, "string", schema.Properties["args"].Items.Type)
	require.Equal(t, "integer", schema.Properties["count"].Type)
	require.Equal(t, "number", schema.Properties["ratio"].Type)
	require.Equal(t, "boolean", schema.Properties["verbose"].Type)
}

func TestParseArguments_Empty(t *testing.T) {
	var v struct{ A string }

	require.NoError(t, ParseArguments(nil, &v))
	require.NoError(t, ParseArguments(&mcp.CallToolRequest{}, &v))
	require.Empty(t, v.A)

	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage("{bad")}}
	require.Error(t, ParseArguments(req, &v))
}

func skipIfNoShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("Test requires a POSIX shell")
	}
}

func decodeExecOutput(t *testing.T, result *mcp.CallToolResult) ExecOutput {
	t.Helper()

	var out ExecOutput
	require.NoError(t, json.Unmarshal([]byte(ResultText(result)), &out))

	return out
}

func TestExecTool(t *testing.T) {
	skipIfNoShell(t)

	server := NewExecServer(slog.Default(), "ipcctl", "test", process.Config{})

	result, err := server.CallTool(context.Background(), ExecToolName, map[string]any{
		"command": "sh",
		"args":    []string{"-c", "echo out; echo err >&2"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	out := decodeExecOutput(t, result)
	require.Equal(t, "done", out.State)
	require.Zero(t, out.ExitCode)
	require.Equal(t, "out\n", out.Stdout)
	require.Equal(t, "err\n", out.Stderr)
}

func TestExecTool_Stdin(t *testing.T) {
	skipIfNoShell(t)

	server := NewExecServer(slog.Default(), "ipcctl", "test", process.Config{})

	result, err := server.CallTool(context.Background(), ExecToolName, map[string]any{
		"command": "cat",
		"stdin":   "fed through stdin",
	})
	require.NoError(t, err)
	require.Equal(t, "fed through stdin", decodeExecOutput(t, result).Stdout)
}

func TestExecTool_Failures(t *testing.T) {
	skipIfNoShell(t)

	server := NewExecServer(slog.Default(), "ipcctl", "test", process.Config{})

	result, err := server.CallTool(context.Background(), ExecToolName, map[string]any{
		"command": "sh",
		"args":    []string{"-c", "exit 7"},
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, 7, decodeExecOutput(t, result).ExitCode)

	result, err = server.CallTool(context.Background(), ExecToolName, map[string]any{
		"command": "/nonexistent/binary",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Contains(t, ResultText(result), "start process")

	result, err = server.CallTool(context.Background(), ExecToolName, map[string]any{})
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, "command is required", ResultText(result))
}

func TestToolServer_ServeOverInMemoryTransport(t *testing.T) {
	skipIfNoShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := NewExecServer(slog.Default(), "ipcctl", "test", process.Config{})
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)

	go func() { serveErr <- server.Serve(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	require.Equal(t, ExecToolName, tools.Tools[0].Name)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ExecToolName,
		Arguments: map[string]any{"command": "sh", "args": []string{"-c", "printf remote"}},
	})
	require.NoError(t, err)
	require.Equal(t, "remote", decodeExecOutput(t, result).Stdout)

	require.NoError(t, session.Close())
	cancel()
	<-serveErr
}
