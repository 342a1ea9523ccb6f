package socket

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/wagiedev/ipclink-go/internal/signal"
)

// Server accepts socket connections and hands them to the loop as Clients.
type Server struct {
	log      *slog.Logger
	base     *slog.Logger
	id       string
	loop     Loop
	readSize int

	listener net.Listener
	path     string

	newClient signal.Signal[*Client]
}

// Listen starts listening on address. For Unix, a stale socket file at
// address is removed first.
func Listen(log *slog.Logger, loop Loop, network Network, address string, readSize int) (*Server, error) {
	if network == Unix {
		if err := os.Remove(address); err != nil && !stderrors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen(string(network), address)
	if err != nil {
		return nil, fmt.Errorf("listen %s %s: %w", network, address, err)
	}

	id := ulid.Make().String()

	s := &Server{
		log:      log.With("component", "socket_server", "server_id", id),
		base:     log,
		id:       id,
		loop:     loop,
		readSize: readSize,
		listener: ln,
	}

	if network == Unix {
		s.path = address
	}

	s.log.Info("Listening", "network", string(network), "address", ln.Addr().String())

	go s.acceptLoop()

	return s, nil
}

// Addr returns the listener address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// NewClient is emitted on the loop for every accepted connection.
func (s *Server) NewClient() *signal.Signal[*Client] { return &s.newClient }

// Close stops accepting and removes the unix socket file, if any.
func (s *Server) Close() error {
	err := s.listener.Close()

	if s.path != "" {
		_ = os.Remove(s.path)
	}

	return err
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !stderrors.Is(err, net.ErrClosed) {
				s.log.Error("Accept failed", "error", err)
			}

			return
		}

		// Wrap on the loop so nothing the reader posts can run before the
		// NewClient slots have connected to the client.
		s.loop.CallLater(func() {
			s.newClient.Emit(Wrap(s.base, s.loop, conn, s.readSize))
		})
	}
}
