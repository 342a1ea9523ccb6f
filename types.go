package ipclink

import (
	"github.com/wagiedev/ipclink-go/internal/connection"
	"github.com/wagiedev/ipclink-go/internal/eventloop"
	"github.com/wagiedev/ipclink-go/internal/message"
	"github.com/wagiedev/ipclink-go/internal/process"
	"github.com/wagiedev/ipclink-go/internal/signal"
)

// ===== Event loop =====

// Loop runs deferred work on the goroutine that drives it.
type Loop = eventloop.Loop

// Signal is an observer list; slots are called synchronously by Emit.
type Signal[T any] = signal.Signal[T]

// SignalKey identifies a connected slot.
type SignalKey = signal.Key

// ===== Connections =====

// Connection frames messages over a Stream.
type Connection = connection.Connection

// Delivery is the payload of Connection.NewMessage.
type Delivery = connection.Delivery

// ===== Messages =====

// Message is a typed application message.
type Message = message.Message

// Raw is a message whose id has no registered factory.
type Raw = message.Raw

// Response carries a text response.
type Response = message.Response

// Finish carries a final status.
type Finish = message.Finish

// Value is a message with a CBOR-encoded body.
type Value[T any] = message.Value[T]

// Registry maps message ids to factories.
type Registry = message.Registry

// Factory builds a Message from a payload.
type Factory = message.Factory

// Built-in message ids.
const (
	ResponseID = message.ResponseID
	FinishID   = message.FinishID
)

// CBORFactory returns a factory decoding CBOR payloads into Value[T].
func CBORFactory[T any](id uint32) Factory {
	return message.CBORFactory[T](id)
}

// ===== Processes =====

// Process runs one child process and collects its output.
type Process = process.Process

// ExecState is the result of Process.Exec.
type ExecState = process.ExecState

// ExecFlags modify Process.Exec.
type ExecFlags = process.ExecFlags

// Mode reports whether a process was run with Exec or Start.
type Mode = process.Mode

const (
	// Done means the child ran and its output was drained.
	Done = process.Done
	// Error means the child could not be spawned.
	Error = process.Error
	// TimedOut is reserved; timeouts are not enforced.
	TimedOut = process.TimedOut
)

const (
	// NoExecFlags runs Exec with default behavior.
	NoExecFlags = process.NoExecFlags
	// NoCloseStdin keeps the child's stdin open during Exec.
	NoCloseStdin = process.NoCloseStdin
)
