package socket

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/wagiedev/ipclink-go/internal/errors"
	"github.com/wagiedev/ipclink-go/internal/signal"
)

// Network selects the socket family a Client dials.
type Network string

const (
	// Unix dials unix-domain stream sockets.
	Unix Network = "unix"
	// TCP dials TCP sockets.
	TCP Network = "tcp"
)

// DefaultReadBufferSize is the size of a single socket read.
const DefaultReadBufferSize = 64 * 1024

// Loop is the event loop a Client posts its observations to.
type Loop interface {
	CallLater(fn func())
}

// Client is a duplex byte stream over a socket.
type Client struct {
	log      *slog.Logger
	loop     Loop
	network  Network
	readSize int

	// Loop-owned state.
	buffer []byte

	// mu protects conn, connected and the write queue; they are touched by
	// the writer goroutine and by Write/Close on the loop.
	mu        sync.Mutex
	conn      net.Conn
	connected bool
	queue     [][]byte
	wake      chan struct{}
	closing   chan struct{}

	connectedSig    signal.Signal[struct{}]
	disconnectedSig signal.Signal[struct{}]
	readyRead       signal.Signal[struct{}]
	bytesWritten    signal.Signal[int]
}

// NewClient creates an unconnected client for network.
// readSize <= 0 selects DefaultReadBufferSize.
func NewClient(log *slog.Logger, loop Loop, network Network, readSize int) *Client {
	if readSize <= 0 {
		readSize = DefaultReadBufferSize
	}

	return &Client{
		log:      log.With("component", "socket_client", "network", string(network)),
		loop:     loop,
		network:  network,
		readSize: readSize,
	}
}

// Wrap creates a connected client around an established connection, such as
// one returned by a listener. Call it on the loop; reads are posted from the
// moment it returns.
func Wrap(log *slog.Logger, loop Loop, conn net.Conn, readSize int) *Client {
	c := NewClient(log, loop, Network(conn.LocalAddr().Network()), readSize)
	c.attach(conn)

	return c
}

// Connect dials address. On success Connected is emitted on the loop.
func (c *Client) Connect(ctx context.Context, address string) error {
	var d net.Dialer

	conn, err := d.DialContext(ctx, string(c.network), address)
	if err != nil {
		return &errors.ConnectError{Address: address, Err: err}
	}

	c.log.Debug("Socket connected", "address", address)
	c.attach(conn)
	c.loop.CallLater(func() { c.connectedSig.Emit(struct{}{}) })

	return nil
}

func (c *Client) attach(conn net.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.queue = nil
	c.wake = make(chan struct{}, 1)
	c.closing = make(chan struct{})
	wake, closing := c.wake, c.closing
	c.mu.Unlock()

	go c.readLoop(conn)
	go c.writeLoop(conn, wake, closing)
}

// IsConnected reports whether the client has a live connection.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

// Write queues a copy of p for the writer goroutine.
// It returns false if the client is not connected.
func (c *Client) Write(p []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return false
	}

	c.queue = append(c.queue, append([]byte(nil), p...))

	select {
	case c.wake <- struct{}{}:
	default:
	}

	return true
}

// TakeAvailable moves the bytes read so far out of the client.
func (c *Client) TakeAvailable() []byte {
	out := c.buffer
	c.buffer = nil

	return out
}

// Close shuts the connection down. Disconnected is emitted on the loop.
// Bytes still queued for writing are flushed before the socket is closed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.connected = false
	close(c.closing)

	return nil
}

// Connected is emitted after a successful Connect.
func (c *Client) Connected() *signal.Signal[struct{}] { return &c.connectedSig }

// Disconnected is emitted once the connection is gone.
func (c *Client) Disconnected() *signal.Signal[struct{}] { return &c.disconnectedSig }

// ReadyRead is emitted whenever new bytes are available.
func (c *Client) ReadyRead() *signal.Signal[struct{}] { return &c.readyRead }

// BytesWritten is emitted with the byte count of every completed socket write.
func (c *Client) BytesWritten() *signal.Signal[int] { return &c.bytesWritten }

func (c *Client) readLoop(conn net.Conn) {
	buf := make([]byte, c.readSize)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)

			c.loop.CallLater(func() {
				c.buffer = append(c.buffer, chunk...)
				c.readyRead.Emit(struct{}{})
			})
		}

		if err != nil {
			if !stderrors.Is(err, io.EOF) && !stderrors.Is(err, net.ErrClosed) {
				c.log.Debug("Socket read failed", "error", err)
			}

			c.loop.CallLater(func() { c.handleDisconnect(conn) })

			return
		}
	}
}

func (c *Client) writeLoop(conn net.Conn, wake, closing chan struct{}) {
	defer conn.Close()

	for {
		c.mu.Lock()
		batch := c.queue
		c.queue = nil
		c.mu.Unlock()

		for _, p := range batch {
			n, err := conn.Write(p)
			if n > 0 {
				c.loop.CallLater(func() { c.bytesWritten.Emit(n) })
			}

			if err != nil {
				c.log.Debug("Socket write failed", "error", err)

				return
			}
		}

		if len(batch) > 0 {
			continue
		}

		select {
		case <-wake:
		case <-closing:
			c.mu.Lock()
			remaining := len(c.queue)
			c.mu.Unlock()

			if remaining == 0 {
				return
			}
		}
	}
}

// handleDisconnect runs on the loop once the reader goroutine has stopped.
func (c *Client) handleDisconnect(conn net.Conn) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()

		return
	}

	wasConnected := c.connected
	c.connected = false

	if wasConnected {
		close(c.closing)
	}
	c.mu.Unlock()

	c.log.Debug("Socket disconnected")
	c.disconnectedSig.Emit(struct{}{})
}
