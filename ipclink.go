package ipclink

import (
	"context"
	"fmt"

	"github.com/wagiedev/ipclink-go/internal/connection"
	"github.com/wagiedev/ipclink-go/internal/eventloop"
	"github.com/wagiedev/ipclink-go/internal/message"
	"github.com/wagiedev/ipclink-go/internal/process"
	"github.com/wagiedev/ipclink-go/internal/socket"
)

// NewLoop creates an event loop. Drive it with Run or ProcessPending.
func NewLoop(opts ...Option) *Loop {
	options := applyOptions(opts)

	return eventloop.New(options.Logger)
}

// NewRegistry creates a registry with Response and Finish registered.
func NewRegistry(opts ...Option) *Registry {
	options := applyOptions(opts)

	return message.NewDefaultRegistry(options.Logger)
}

// NewConnection creates a Connection over an existing stream. Use it with
// streams accepted by a Server or with custom Stream implementations.
func NewConnection(loop *Loop, stream Stream, opts ...Option) *Connection {
	options := applyOptions(opts)

	conn := connection.New(options.Logger, loop, stream, options.Registry)
	conn.SetSilent(options.Silent)

	return conn
}

// Dial connects to a server listening on address and returns a Connection
// driven by loop. The socket family is selected with WithNetwork.
func Dial(ctx context.Context, loop *Loop, address string, opts ...Option) (*Connection, error) {
	options := applyOptions(opts)

	stream := socket.NewClient(options.Logger, loop, options.Transport.Network, options.ReadBufferSize)

	conn := connection.New(options.Logger, loop, stream, options.Registry)
	conn.SetSilent(options.Silent)

	if err := conn.ConnectToServer(ctx, address, options.Transport.ConnectTimeout); err != nil {
		conn.Destroy()

		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	return conn, nil
}

// NewProcess creates a Process configured by opts.
func NewProcess(opts ...Option) *Process {
	options := applyOptions(opts)

	return process.New(options.Logger, options.ProcessConfig())
}
