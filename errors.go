package ipclink

import "github.com/wagiedev/ipclink-go/internal/errors"

// Re-export error types from internal package

// SpawnError indicates a child process could not be launched.
type SpawnError = errors.SpawnError

// PipeReadError indicates reading a child's output pipe failed.
type PipeReadError = errors.PipeReadError

// DecodeError indicates a received frame could not be turned into a message.
type DecodeError = errors.DecodeError

// ConnectError indicates a stream could not connect to its peer.
type ConnectError = errors.ConnectError

// IPCError is the base interface for all ipclink errors.
type IPCError = errors.IPCError

// Re-export sentinel errors from internal package.
var (
	// ErrNotConnected indicates a send on a stream that is not connected.
	ErrNotConnected = errors.ErrNotConnected

	// ErrAlreadyStarted indicates a process was started twice.
	ErrAlreadyStarted = errors.ErrAlreadyStarted

	// ErrNotStarted indicates an operation on a process that never started.
	ErrNotStarted = errors.ErrNotStarted

	// ErrStdinClosed indicates a write after the child's stdin was closed.
	ErrStdinClosed = errors.ErrStdinClosed

	// ErrUnknownMessageType indicates a frame with an unregistered message id.
	ErrUnknownMessageType = errors.ErrUnknownMessageType

	// ErrShortMessage indicates a frame too short to carry a message id.
	ErrShortMessage = errors.ErrShortMessage

	// ErrDuplicateMessageType indicates a message id registered twice.
	ErrDuplicateMessageType = errors.ErrDuplicateMessageType

	// ErrLoopStopped indicates the event loop was stopped with Quit.
	ErrLoopStopped = errors.ErrLoopStopped
)
