// Package config provides configuration types shared by the ipclink packages.
package config

import (
	"io"
	"log/slog"

	"github.com/wagiedev/ipclink-go/internal/message"
	"github.com/wagiedev/ipclink-go/internal/process"
	"github.com/wagiedev/ipclink-go/internal/socket"
)

// Options configures connections, sockets and processes.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Silent makes new connections accept sends without writing anything.
	Silent bool

	// ReadBufferSize bounds a single socket read.
	// Zero selects socket.DefaultReadBufferSize.
	ReadBufferSize int

	// PipeReadBufferSize bounds a single child pipe read.
	// Zero selects process.DefaultReadBufferSize.
	PipeReadBufferSize int

	// Dir is the working directory for spawned processes.
	Dir string

	// Registry decodes incoming frames. If nil, a registry with the
	// built-in message types is created.
	Registry *message.Registry

	// Transport selects the socket family and address used by Dial and Listen.
	Transport Transport
}

// Normalize fills zero fields with their defaults and returns o.
func (o *Options) Normalize() *Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = socket.DefaultReadBufferSize
	}

	if o.PipeReadBufferSize <= 0 {
		o.PipeReadBufferSize = process.DefaultReadBufferSize
	}

	if o.Registry == nil {
		o.Registry = message.NewDefaultRegistry(o.Logger)
	}

	if o.Transport.Network == "" {
		o.Transport.Network = socket.Unix
	}

	return o
}

// ProcessConfig returns the process settings carried by o.
func (o *Options) ProcessConfig() process.Config {
	return process.Config{
		ReadBufferSize: o.PipeReadBufferSize,
		Dir:            o.Dir,
	}
}
