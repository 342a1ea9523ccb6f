package message

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/wagiedev/ipclink-go/internal/errors"
)

// IDSize is the size in bytes of the message id in front of every payload.
const IDSize = 4

// Factory builds a Message from a payload. The payload slice is owned by
// the factory's result; it is not reused by the caller.
type Factory func(payload []byte) (Message, error)

// Registry maps message ids to factories. It is safe for concurrent use.
type Registry struct {
	log *slog.Logger

	mu        sync.RWMutex
	factories map[uint32]Factory

	// allowUnknown makes Decode return *Raw for unregistered ids.
	allowUnknown bool
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:       log.With("component", "message_registry"),
		factories: make(map[uint32]Factory, 8),
	}
}

// NewDefaultRegistry creates a registry with Response and Finish registered.
func NewDefaultRegistry(log *slog.Logger) *Registry {
	r := NewRegistry(log)

	r.factories[ResponseID] = func(payload []byte) (Message, error) {
		return &Response{Text: string(payload)}, nil
	}
	r.factories[FinishID] = func(payload []byte) (Message, error) {
		msg := &Finish{}
		if err := cbor.Unmarshal(payload, msg); err != nil {
			return nil, fmt.Errorf("unmarshal finish: %w", err)
		}

		return msg, nil
	}

	return r
}

// AllowUnknown controls whether ids without a factory decode to *Raw
// instead of failing with ErrUnknownMessageType.
func (r *Registry) AllowUnknown(allow bool) {
	r.mu.Lock()
	r.allowUnknown = allow
	r.mu.Unlock()
}

// Register adds a factory for id. Registering the same id twice fails with
// ErrDuplicateMessageType.
func (r *Registry) Register(id uint32, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("register %d: %w", id, errors.ErrDuplicateMessageType)
	}

	r.factories[id] = f

	return nil
}

// Decode turns a frame body (id followed by payload) into a Message.
func (r *Registry) Decode(data []byte) (Message, error) {
	if len(data) < IDSize {
		return nil, errors.ErrShortMessage
	}

	id := binary.BigEndian.Uint32(data[:IDSize])
	payload := data[IDSize:]

	r.mu.RLock()
	f, ok := r.factories[id]
	allowUnknown := r.allowUnknown
	r.mu.RUnlock()

	if !ok {
		if allowUnknown {
			return &Raw{ID: id, Payload: payload}, nil
		}

		r.log.Debug("Skipping unknown message type", "message_id", id)

		return nil, &errors.DecodeError{ID: id, Err: errors.ErrUnknownMessageType}
	}

	msg, err := f(payload)
	if err != nil {
		return nil, &errors.DecodeError{ID: id, Err: err}
	}

	return msg, nil
}

// CBORFactory returns a Factory decoding CBOR payloads into Value[T] with id.
func CBORFactory[T any](id uint32) Factory {
	return func(payload []byte) (Message, error) {
		msg := &Value[T]{ID: id}
		if err := cbor.Unmarshal(payload, &msg.Body); err != nil {
			return nil, fmt.Errorf("unmarshal cbor: %w", err)
		}

		return msg, nil
	}
}

// Encode returns the frame body for msg: its id followed by its payload.
func Encode(msg Message) ([]byte, error) {
	payload, err := msg.MarshalPayload()
	if err != nil {
		return nil, err
	}

	body := make([]byte, IDSize+len(payload))
	binary.BigEndian.PutUint32(body, msg.MessageID())
	copy(body[IDSize:], payload)

	return body, nil
}
