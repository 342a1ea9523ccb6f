package ipclink

import (
	"log/slog"
	"net"

	"github.com/wagiedev/ipclink-go/internal/signal"
	"github.com/wagiedev/ipclink-go/internal/socket"
)

// Server accepts socket connections and wraps each one in a Connection.
type Server struct {
	log     *slog.Logger
	options *Options
	loop    *Loop
	sock    *socket.Server

	newConnection signal.Signal[*Connection]
}

// Listen listens on address and emits NewConnection on loop for every
// accepted peer. For unix sockets a stale socket file is replaced.
func Listen(loop *Loop, address string, opts ...Option) (*Server, error) {
	options := applyOptions(opts)

	sock, err := socket.Listen(options.Logger, loop, options.Transport.Network, address, options.ReadBufferSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		log:     options.Logger.With("component", "server"),
		options: options,
		loop:    loop,
		sock:    sock,
	}

	sock.NewClient().Connect(s.accept)

	return s, nil
}

func (s *Server) accept(client *socket.Client) {
	conn := NewConnection(s.loop, client,
		WithLogger(s.options.Logger),
		WithRegistry(s.options.Registry),
		WithSilent(s.options.Silent),
	)

	s.log.Debug("Accepted connection", "connection_id", conn.ID())

	s.newConnection.Emit(conn)
}

// NewConnection is emitted on the loop for every accepted peer.
func (s *Server) NewConnection() *Signal[*Connection] { return &s.newConnection }

// Addr returns the listening address.
func (s *Server) Addr() net.Addr { return s.sock.Addr() }

// Close stops accepting. Connections already accepted are unaffected.
func (s *Server) Close() error { return s.sock.Close() }
