package config

import (
	"time"

	"github.com/wagiedev/ipclink-go/internal/socket"
)

// Transport describes where a connection's stream goes.
type Transport struct {
	// Network is the socket family. Empty selects socket.Unix.
	Network socket.Network

	// Address is the socket path for unix sockets or host:port for tcp.
	Address string

	// ConnectTimeout is passed to ConnectToServer. It is recorded but not
	// enforced; cancel the context to abandon a connect.
	ConnectTimeout time.Duration
}
