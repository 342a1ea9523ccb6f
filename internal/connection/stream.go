package connection

import (
	"context"

	"github.com/wagiedev/ipclink-go/internal/eventloop"
	"github.com/wagiedev/ipclink-go/internal/message"
	"github.com/wagiedev/ipclink-go/internal/signal"
)

// Stream is the duplex byte stream a Connection frames messages over.
//
// Signals must be emitted on the event-loop goroutine. The socket package
// provides the default implementation.
type Stream interface {
	// Connect starts connecting to address.
	Connect(ctx context.Context, address string) error
	// IsConnected reports whether bytes can currently be written.
	IsConnected() bool
	// Write queues p for writing and reports whether it was accepted.
	// The stream takes a copy; p may be reused after Write returns.
	Write(p []byte) bool
	// TakeAvailable moves the bytes read so far out of the stream.
	// The caller owns the returned slice. It is empty when nothing is buffered.
	TakeAvailable() []byte
	// Close shuts the stream down.
	Close() error

	Connected() *signal.Signal[struct{}]
	Disconnected() *signal.Signal[struct{}]
	ReadyRead() *signal.Signal[struct{}]
	// BytesWritten carries the number of bytes the peer side accepted.
	BytesWritten() *signal.Signal[int]
}

// Loop is the deferred-task mechanism a Connection schedules work on.
type Loop interface {
	CallLater(fn func())
	DeleteLater(d eventloop.Destroyer)
}

// Decoder turns a frame body into a message.
type Decoder interface {
	Decode(data []byte) (message.Message, error)
}

// Compile-time verification that the default collaborators satisfy the interfaces.
var (
	_ Loop    = (*eventloop.Loop)(nil)
	_ Decoder = (*message.Registry)(nil)
)
