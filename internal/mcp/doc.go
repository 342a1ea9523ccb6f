// Package mcp exposes the process runner as Model Context Protocol tools.
//
// A ToolServer keeps its own registry of tools so they can be invoked
// directly, and builds an SDK server from that registry when it is served
// over a transport such as stdio.
package mcp
