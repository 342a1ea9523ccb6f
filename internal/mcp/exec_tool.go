package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/ipclink-go/internal/process"
)

// ExecToolName is the name the exec tool is registered under.
const ExecToolName = "exec"

// ExecInput is the argument object of the exec tool.
type ExecInput struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Stdin   string   `json:"stdin,omitempty"`
}

// ExecOutput is the JSON document returned by the exec tool.
type ExecOutput struct {
	State    string `json:"state"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr,omitempty"`
}

// ExecTool returns the exec tool and its handler. Each call runs one child
// process to completion with cfg.
func ExecTool(log *slog.Logger, cfg process.Config) (*mcp.Tool, mcp.ToolHandler) {
	log = log.With("tool", ExecToolName)

	tool := NewTool(
		ExecToolName,
		"Run a command to completion and return its exit code, stdout and stderr.",
		SimpleSchema(map[string]string{
			"command": "string",
			"args":    "[]string",
			"stdin":   "string",
		}, "args", "stdin"),
	)

	handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in ExecInput
		if err := ParseArguments(req, &in); err != nil {
			return nil, err
		}

		if in.Command == "" {
			return ErrorResult("command is required"), nil
		}

		out, err := runExec(ctx, log, cfg, in)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		data, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("marshal exec output: %w", err)
		}

		result := TextResult(string(data))
		result.IsError = out.ExitCode != 0

		return result, nil
	}

	return tool, handler
}

// runExec runs in.Command. Without stdin the child sees a closed stdin;
// otherwise it is fed in.Stdin and then closed. A cancelled ctx kills the
// child.
func runExec(ctx context.Context, log *slog.Logger, cfg process.Config, in ExecInput) (*ExecOutput, error) {
	proc := process.New(log, cfg)
	defer func() { _ = proc.Close() }()

	if err := proc.Start(in.Command, in.Args, nil); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() {
		if err := proc.Kill(); err != nil {
			log.Debug("Kill after cancellation failed", "error", err)
		}
	})
	defer stop()

	if in.Stdin != "" {
		if _, err := proc.Write([]byte(in.Stdin)); err != nil {
			log.Debug("Child did not take all of stdin", "error", err)
		}
	}

	if err := proc.CloseStdin(); err != nil {
		log.Debug("Closing stdin failed", "error", err)
	}

	if err := proc.Close(); err != nil {
		log.Debug("Releasing process pipes failed", "error", err)
	}

	code, _ := proc.ExitCode()

	return &ExecOutput{
		State:    process.Done.String(),
		ExitCode: code,
		Stdout:   string(proc.Stdout()),
		Stderr:   string(proc.Stderr()),
	}, nil
}

// NewExecServer returns a tool server with the exec tool registered.
func NewExecServer(log *slog.Logger, name, version string, cfg process.Config) *ToolServer {
	server := NewToolServer(log, name, version)
	server.AddTool(ExecTool(log, cfg))

	return server
}
