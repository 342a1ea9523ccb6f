package errors

import (
	"errors"
	"fmt"
)

// IPCError is the base interface for all ipclink errors.
type IPCError interface {
	error
	IsIPCError() bool
}

// Compile-time verification that all error types implement IPCError.
var (
	_ IPCError = (*SpawnError)(nil)
	_ IPCError = (*PipeReadError)(nil)
	_ IPCError = (*DecodeError)(nil)
	_ IPCError = (*ConnectError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotConnected indicates a send was attempted on an unconnected stream.
	ErrNotConnected = errors.New("stream not connected")

	// ErrAlreadyStarted indicates a process object was started twice.
	ErrAlreadyStarted = errors.New("process already started")

	// ErrNotStarted indicates an operation needs a running process.
	ErrNotStarted = errors.New("process not started")

	// ErrStdinClosed indicates the child's stdin has already been closed.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrUnknownMessageType indicates no factory is registered for a message id.
	// The transport drops such frames rather than treating them as fatal.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrShortMessage indicates a frame too short to carry a message id.
	ErrShortMessage = errors.New("message shorter than id field")

	// ErrDuplicateMessageType indicates a message id was registered twice.
	ErrDuplicateMessageType = errors.New("message type already registered")

	// ErrLoopStopped indicates the event loop was quit.
	ErrLoopStopped = errors.New("event loop stopped")
)

// SpawnError indicates a child process could not be launched.
// Stage names the step that failed: "create pipes" or "start process".
type SpawnError struct {
	Stage   string
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %s: %v", e.Command, e.Stage, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsIPCError implements IPCError.
func (e *SpawnError) IsIPCError() bool { return true }

// PipeReadError indicates reading a child's output pipe failed for a reason
// other than the pipe being closed.
type PipeReadError struct {
	Stream string
	Err    error
}

func (e *PipeReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Stream, e.Err)
}

func (e *PipeReadError) Unwrap() error {
	return e.Err
}

// IsIPCError implements IPCError.
func (e *PipeReadError) IsIPCError() bool { return true }

// DecodeError indicates a frame payload could not be turned into a message.
type DecodeError struct {
	ID  uint32
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode message %d: %v", e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsIPCError implements IPCError.
func (e *DecodeError) IsIPCError() bool { return true }

// ConnectError indicates a stream could not connect to its peer.
type ConnectError struct {
	Address string
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// IsIPCError implements IPCError.
func (e *ConnectError) IsIPCError() bool { return true }
