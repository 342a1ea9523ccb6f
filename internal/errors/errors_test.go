package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpawnError(t *testing.T) {
	root := errors.New("executable file not found in $PATH")
	err := &SpawnError{Stage: "start process", Command: "nope", Err: root}

	require.Equal(t, "spawn nope: start process: executable file not found in $PATH", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsIPCError())
}

func TestPipeReadError(t *testing.T) {
	root := errors.New("bad file descriptor")
	err := &PipeReadError{Stream: "stderr", Err: root}

	require.Equal(t, "read stderr: bad file descriptor", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsIPCError())
}

func TestDecodeError(t *testing.T) {
	err := &DecodeError{ID: 42, Err: ErrUnknownMessageType}

	require.Equal(t, "decode message 42: unknown message type", err.Error())
	require.ErrorIs(t, err, ErrUnknownMessageType)
	require.True(t, err.IsIPCError())
}

func TestConnectError(t *testing.T) {
	root := errors.New("connection refused")
	err := &ConnectError{Address: "/tmp/ipc.sock", Err: root}

	require.Equal(t, "connect to /tmp/ipc.sock: connection refused", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsIPCError())
}

func TestErrorsAsType(t *testing.T) {
	var err error = &SpawnError{Stage: "create pipes", Command: "sh", Err: errors.New("too many open files")}

	spawnErr, ok := errors.AsType[*SpawnError](err)
	require.True(t, ok)
	require.Equal(t, "create pipes", spawnErr.Stage)

	ipcErr, ok := errors.AsType[IPCError](err)
	require.True(t, ok)
	require.True(t, ipcErr.IsIPCError())
}
