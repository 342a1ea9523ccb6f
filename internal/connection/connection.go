package connection

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/wagiedev/ipclink-go/internal/chunk"
	"github.com/wagiedev/ipclink-go/internal/errors"
	"github.com/wagiedev/ipclink-go/internal/message"
	"github.com/wagiedev/ipclink-go/internal/signal"
)

// HeaderSize is the size of the length prefix in front of every frame.
const HeaderSize = 4

// Delivery is emitted by NewMessage for every decoded frame.
type Delivery struct {
	Message message.Message
	Conn    *Connection
}

// Connection frames messages over a Stream.
type Connection struct {
	log     *slog.Logger
	id      string
	loop    Loop
	stream  Stream
	decoder Decoder

	buffers chunk.Queue

	// pendingRead is 0 while waiting for a frame header, otherwise the
	// number of body bytes needed to complete the current frame.
	pendingRead int
	// pendingWrite counts bytes handed to the stream and not yet acknowledged.
	pendingWrite int

	finished  bool
	silent    bool
	destroyed bool

	streamSlots []func()

	newMessage   signal.Signal[Delivery]
	sendComplete signal.Signal[*Connection]
	connected    signal.Signal[*Connection]
	disconnected signal.Signal[*Connection]
	destroyedSig signal.Signal[*Connection]
}

// New creates a Connection over stream.
//
// The stream may be unconnected (see ConnectToServer) or already connected.
// In the latter case bytes the stream buffered before the Connection existed
// are processed on the next loop turn.
func New(log *slog.Logger, loop Loop, stream Stream, decoder Decoder) *Connection {
	id := ulid.Make().String()

	c := &Connection{
		log:     log.With("component", "connection", "connection_id", id),
		id:      id,
		loop:    loop,
		stream:  stream,
		decoder: decoder,
	}

	c.watch(stream.Connected(), func(struct{}) { c.onConnected() })
	c.watch(stream.Disconnected(), func(struct{}) { c.onDisconnected() })
	c.watch(stream.ReadyRead(), func(struct{}) { c.dataAvailable() })

	bytesKey := stream.BytesWritten().Connect(c.dataWritten)
	c.streamSlots = append(c.streamSlots, func() { stream.BytesWritten().Disconnect(bytesKey) })

	if stream.IsConnected() {
		loop.CallLater(c.checkData)
	}

	return c
}

func (c *Connection) watch(sig *signal.Signal[struct{}], fn func(struct{})) {
	key := sig.Connect(fn)
	c.streamSlots = append(c.streamSlots, func() { sig.Disconnect(key) })
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string { return c.id }

// NewMessage is emitted once per decoded frame, in arrival order.
func (c *Connection) NewMessage() *signal.Signal[Delivery] { return &c.newMessage }

// SendComplete is emitted when every written byte has been acknowledged.
func (c *Connection) SendComplete() *signal.Signal[*Connection] { return &c.sendComplete }

// Connected is emitted when the stream finishes connecting.
func (c *Connection) Connected() *signal.Signal[*Connection] { return &c.connected }

// Disconnected is emitted when the stream loses its peer.
func (c *Connection) Disconnected() *signal.Signal[*Connection] { return &c.disconnected }

// Destroyed is emitted from Destroy, before the stream is released.
func (c *Connection) Destroyed() *signal.Signal[*Connection] { return &c.destroyedSig }

// IsConnected reports whether the underlying stream is connected.
func (c *Connection) IsConnected() bool {
	return c.stream != nil && c.stream.IsConnected()
}

// ConnectToServer connects the stream to address.
//
// The timeout is accepted but not enforced: aborting a pending connect after
// a deadline is not implemented. Use ctx to bound the dial itself.
func (c *Connection) ConnectToServer(ctx context.Context, address string, timeout time.Duration) error {
	if c.stream == nil {
		return errors.ErrNotConnected
	}

	c.log.Debug("Connecting", "address", address, "timeout", timeout)

	if err := c.stream.Connect(ctx, address); err != nil {
		c.log.Warn("Failed to connect", "address", address, "error", err)

		return fmt.Errorf("connect: %w", err)
	}

	return nil
}

// SetSilent toggles silent mode. A silent connection accepts sends and
// transmits nothing.
func (c *Connection) SetSilent(silent bool) { c.silent = silent }

// IsSilent reports whether the connection is in silent mode.
func (c *Connection) IsSilent() bool { return c.silent }

// PendingWrite returns the number of bytes written to the stream and not yet
// acknowledged. Callers can use it as a backpressure signal.
func (c *Connection) PendingWrite() int { return c.pendingWrite }

// Send writes one frame carrying id and payload.
//
// An empty payload is a no-op that reports success. Sending on an unconnected
// stream logs and reports failure without writing. In silent mode the frame
// is discarded and success is reported. Otherwise Send reports whether both
// the header and the body were accepted by the stream.
func (c *Connection) Send(id uint32, payload []byte) bool {
	if len(payload) == 0 {
		return true
	}

	if !c.IsConnected() {
		c.log.Error("Trying to send message to unconnected stream", "message_id", id, "error", errors.ErrNotConnected)

		return false
	}

	if c.silent {
		return true
	}

	body := make([]byte, message.IDSize+len(payload))
	binary.BigEndian.PutUint32(body, id)
	copy(body[message.IDSize:], payload)

	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body))) //nolint:gosec // frames above 4GiB are not supported

	c.pendingWrite += len(header) + len(body)

	c.log.Debug("Sending frame", "message_id", id, "size", len(body), "pending_write", c.pendingWrite)

	return c.stream.Write(header[:]) && c.stream.Write(body)
}

// SendMessage encodes msg and sends it.
func (c *Connection) SendMessage(msg message.Message) bool {
	payload, err := msg.MarshalPayload()
	if err != nil {
		c.log.Error("Failed to encode message", "message_id", msg.MessageID(), "error", err)

		return false
	}

	return c.Send(msg.MessageID(), payload)
}

// Write sends text as a Response message.
func (c *Connection) Write(text string) bool {
	return c.SendMessage(&message.Response{Text: text})
}

// WriteAsync sends text as a Response message on the next loop turn.
func (c *Connection) WriteAsync(text string) {
	c.loop.CallLater(func() {
		if c.destroyed {
			return
		}

		c.Write(text)
	})
}

// Finish closes the stream and destroys the connection as soon as every
// pending write has been acknowledged. Destruction always happens on a later
// loop turn.
func (c *Connection) Finish() {
	c.finished = true
	c.dataWritten(0)
}

// FinishWithStatus sends a Finish message carrying status, then calls Finish.
func (c *Connection) FinishWithStatus(status int) {
	c.SendMessage(&message.Finish{Status: status})
	c.Finish()
}

// Destroy emits Destroyed and releases the stream. It is normally reached
// through the loop's DeleteLater after Finish; calling it more than once is a
// no-op.
func (c *Connection) Destroy() {
	if c.destroyed {
		return
	}

	c.destroyed = true

	c.log.Debug("Destroying connection")
	c.destroyedSig.Emit(c)

	for _, disconnect := range c.streamSlots {
		disconnect()
	}

	c.streamSlots = nil
	c.stream = nil
	c.buffers.Reset()
}

// IsDestroyed reports whether Destroy has run.
func (c *Connection) IsDestroyed() bool { return c.destroyed }

func (c *Connection) checkData() {
	if c.destroyed {
		return
	}

	c.dataAvailable()
}

func (c *Connection) onConnected() {
	c.log.Debug("Stream connected")
	c.connected.Emit(c)
}

func (c *Connection) onDisconnected() {
	c.log.Debug("Stream disconnected")
	c.disconnected.Emit(c)
}

// dataAvailable moves the stream's bytes into the chunk queue and delivers
// every complete frame.
func (c *Connection) dataAvailable() {
	for c.stream != nil {
		c.buffers.Push(c.stream.TakeAvailable())

		available := c.buffers.Len()

		if c.pendingRead == 0 {
			if available < HeaderSize {
				return
			}

			var header [HeaderSize]byte
			c.buffers.Consume(header[:])

			c.pendingRead = int(binary.BigEndian.Uint32(header[:]))
			available -= HeaderSize
		}

		if available < c.pendingRead {
			return
		}

		frame := make([]byte, c.pendingRead)
		c.buffers.Consume(frame)
		c.pendingRead = 0

		c.deliver(frame)
	}
}

func (c *Connection) deliver(frame []byte) {
	msg, err := c.decoder.Decode(frame)
	if err != nil {
		c.log.Debug("Dropping undecodable frame", "size", len(frame), "error", err)

		return
	}

	c.newMessage.Emit(Delivery{Message: msg, Conn: c})
}

func (c *Connection) dataWritten(n int) {
	if c.destroyed {
		return
	}

	if n > c.pendingWrite {
		panic(fmt.Sprintf("connection: %d bytes acknowledged with only %d pending", n, c.pendingWrite))
	}

	c.pendingWrite -= n
	if c.pendingWrite != 0 {
		return
	}

	if n > 0 {
		c.sendComplete.Emit(c)
	}

	if c.finished && c.stream != nil {
		c.log.Debug("Finished and flushed, closing stream")

		if err := c.stream.Close(); err != nil {
			c.log.Debug("Stream close failed", "error", err)
		}

		c.loop.DeleteLater(c)
	}
}
