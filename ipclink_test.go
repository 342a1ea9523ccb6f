package ipclink

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type point struct {
	X int `cbor:"x"`
	Y int `cbor:"y"`
}

const pointID uint32 = 100

func runLoop(t *testing.T, loop *Loop) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = loop.Run(ctx)
	}()

	t.Cleanup(func() {
		loop.Quit()
		<-done
		cancel()
	})

	return ctx
}

func TestApplyOptions(t *testing.T) {
	reg := NewRegistry()

	options := applyOptions([]Option{
		WithLogger(slog.Default()),
		WithSilent(true),
		WithReadBufferSize(128),
		WithPipeReadBufferSize(64),
		WithDir("/tmp"),
		WithRegistry(reg),
		WithNetwork(TCP),
		WithConnectTimeout(time.Second),
	})

	require.Same(t, slog.Default(), options.Logger)
	require.True(t, options.Silent)
	require.Equal(t, 128, options.ReadBufferSize)
	require.Equal(t, 64, options.PipeReadBufferSize)
	require.Equal(t, "/tmp", options.Dir)
	require.Same(t, reg, options.Registry)
	require.Equal(t, TCP, options.Transport.Network)
	require.Equal(t, time.Second, options.Transport.ConnectTimeout)
}

func TestApplyOptions_Defaults(t *testing.T) {
	options := applyOptions(nil)

	require.NotNil(t, options.Logger)
	require.NotNil(t, options.Registry)
	require.Equal(t, Unix, options.Transport.Network)
	require.False(t, options.Silent)
}

func TestDialAndListen_TCP(t *testing.T) {
	loop := NewLoop()
	ctx := runLoop(t, loop)

	registry := NewRegistry()
	require.NoError(t, registry.Register(pointID, CBORFactory[point](pointID)))

	server, err := Listen(loop, "127.0.0.1:0", WithNetwork(TCP), WithRegistry(registry))
	require.NoError(t, err)

	defer server.Close()

	points := make(chan point, 1)
	texts := make(chan string, 1)

	server.NewConnection().Connect(func(conn *Connection) {
		conn.NewMessage().Connect(func(d Delivery) {
			switch m := d.Message.(type) {
			case *Value[point]:
				points <- m.Body
			case *Response:
				texts <- m.Text
			}
		})
	})

	conn, err := Dial(ctx, loop, server.Addr().String(), WithNetwork(TCP), WithRegistry(registry))
	require.NoError(t, err)
	require.NotEmpty(t, conn.ID())

	loop.CallLater(func() {
		if !conn.SendMessage(&Value[point]{ID: pointID, Body: point{X: 3, Y: -4}}) {
			t.Error("point rejected")
		}

		if !conn.Write("after the point") {
			t.Error("text rejected")
		}
	})

	select {
	case got := <-points:
		require.Equal(t, point{X: 3, Y: -4}, got)
	case <-ctx.Done():
		t.Fatal("timed out waiting for point")
	}

	select {
	case got := <-texts:
		require.Equal(t, "after the point", got)
	case <-ctx.Done():
		t.Fatal("timed out waiting for text")
	}
}

func TestDial_Failure(t *testing.T) {
	loop := NewLoop()
	ctx := runLoop(t, loop)

	_, err := Dial(ctx, loop, "/nonexistent/dir/ipclink.sock")
	require.Error(t, err)

	connErr, ok := errors.AsType[*ConnectError](err)
	require.True(t, ok)
	require.Equal(t, "/nonexistent/dir/ipclink.sock", connErr.Address)
}

func TestNewConnection_Silent(t *testing.T) {
	loop := NewLoop()
	ctx := runLoop(t, loop)

	dir, err := os.MkdirTemp("", "ipc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	server, err := Listen(loop, dir+"/s.sock")
	require.NoError(t, err)

	defer server.Close()

	conn, err := Dial(ctx, loop, dir+"/s.sock", WithSilent(true))
	require.NoError(t, err)

	result := make(chan int, 1)

	loop.CallLater(func() {
		_ = conn.Write("dropped")
		result <- conn.PendingWrite()
	})

	select {
	case pending := <-result:
		require.Zero(t, pending)
	case <-ctx.Done():
		t.Fatal("timed out")
	}

	require.True(t, conn.IsSilent())
}

func TestNewProcess_WithDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Test requires a POSIX shell")
	}

	dir := t.TempDir()
	proc := NewProcess(WithDir(dir), WithPipeReadBufferSize(8))

	t.Cleanup(func() { _ = proc.Close() })

	state, err := proc.Exec("pwd", nil, 0, NoExecFlags)
	require.NoError(t, err)
	require.Equal(t, Done, state)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	got, err := filepath.EvalSymlinks(strings.TrimSpace(string(proc.Stdout())))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestNewToolServer(t *testing.T) {
	server := NewToolServer("ipcctl", "test", WithLogger(NopLogger()))

	tools := server.Tools()
	require.Len(t, tools, 1)
	require.Equal(t, "exec", tools[0].Name)
}
