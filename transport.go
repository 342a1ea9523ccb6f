package ipclink

import (
	"github.com/wagiedev/ipclink-go/internal/connection"
	"github.com/wagiedev/ipclink-go/internal/socket"
)

// Stream is the duplex byte stream a Connection frames messages over.
// Implement this to run connections over something other than a socket,
// for example in tests.
//
// The default implementation is a socket client created by Dial or accepted
// by a Server.
type Stream = connection.Stream

// Network selects a socket family.
type Network = socket.Network

const (
	// Unix uses unix-domain stream sockets.
	Unix = socket.Unix
	// TCP uses TCP sockets.
	TCP = socket.TCP
)
