package main

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/wagiedev/ipclink-go"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve process execution as an MCP tool over stdio",
		Long: `Serve an MCP server on stdin and stdout exposing the "exec" tool.

Each call runs one command to completion and returns its exit code, stdout
and stderr as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := ipclink.NewToolServer("ipcctl", version, a.options()...)

			err := server.Serve(cmd.Context(), &mcp.StdioTransport{})
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		},
	}

	cmd.Flags().String("dir", "", "Working directory for executed commands")
	cmd.Flags().Int("pipe-read-buffer-size", 0, "Bytes per pipe read (0 for the default)")

	return cmd
}
