package ipclink

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSpawnError_Creation tests SpawnError formatting and unwrapping.
func TestSpawnError_Creation(t *testing.T) {
	inner := errors.New("no such file or directory")
	err := &SpawnError{Stage: "start process", Command: "missing", Err: inner}

	require.Contains(t, err.Error(), "start process")
	require.Contains(t, err.Error(), "missing")
	require.ErrorIs(t, err, inner)
}

// TestErrorTypes_ImplementIPCError tests the marker interface on every typed error.
func TestErrorTypes_ImplementIPCError(t *testing.T) {
	errs := []error{
		&SpawnError{Err: errors.New("x")},
		&PipeReadError{Stream: "stdout", Err: errors.New("x")},
		&DecodeError{ID: 9, Err: ErrUnknownMessageType},
		&ConnectError{Address: "/tmp/x.sock", Err: errors.New("x")},
	}

	for _, err := range errs {
		ipcErr, ok := errors.AsType[IPCError](err)
		require.True(t, ok, "%T should implement IPCError", err)
		require.True(t, ipcErr.IsIPCError())
	}
}

// TestErrors_ThroughWrapping tests that typed errors survive fmt.Errorf wrapping.
func TestErrors_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("dial: %w", &ConnectError{Address: "127.0.0.1:1", Err: errors.New("refused")})

	connErr, ok := errors.AsType[*ConnectError](wrapped)
	require.True(t, ok)
	require.Equal(t, "127.0.0.1:1", connErr.Address)

	decodeErr := fmt.Errorf("frame: %w", &DecodeError{ID: 42, Err: ErrUnknownMessageType})
	require.ErrorIs(t, decodeErr, ErrUnknownMessageType)
}
