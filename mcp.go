package ipclink

import "github.com/wagiedev/ipclink-go/internal/mcp"

// ToolServer exposes process execution as MCP tools.
type ToolServer = mcp.ToolServer

// NewToolServer creates an MCP tool server with the exec tool registered.
// Processes it runs use the logger, working directory and pipe buffer size
// from opts.
//
// Example usage:
//
//	server := ipclink.NewToolServer("ipcctl", "1.0.0", ipclink.WithDir(repo))
//	if err := server.Serve(ctx, &sdkmcp.StdioTransport{}); err != nil {
//	    log.Fatal(err)
//	}
func NewToolServer(name, version string, opts ...Option) *ToolServer {
	options := applyOptions(opts)

	return mcp.NewExecServer(options.Logger, name, version, options.ProcessConfig())
}
