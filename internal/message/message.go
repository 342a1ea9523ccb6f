package message

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Built-in message ids.
const (
	// ResponseID carries a text response (see Response).
	ResponseID uint32 = 1
	// FinishID carries a final status before the sender finishes (see Finish).
	FinishID uint32 = 2
)

// Message is a decoded application unit.
type Message interface {
	// MessageID returns the id written in front of the payload.
	MessageID() uint32
	// MarshalPayload returns the payload bytes that follow the id.
	MarshalPayload() ([]byte, error)
}

// Compile-time verification that all message types implement Message.
var (
	_ Message = (*Raw)(nil)
	_ Message = (*Response)(nil)
	_ Message = (*Finish)(nil)
	_ Message = (*Value[struct{}])(nil)
)

// Raw is a message whose payload is kept as opaque bytes.
type Raw struct {
	ID      uint32
	Payload []byte
}

// MessageID implements Message.
func (m *Raw) MessageID() uint32 { return m.ID }

// MarshalPayload implements Message.
func (m *Raw) MarshalPayload() ([]byte, error) { return m.Payload, nil }

// Response is a plain text reply. The payload is the UTF-8 text itself.
type Response struct {
	Text string
}

// MessageID implements Message.
func (m *Response) MessageID() uint32 { return ResponseID }

// MarshalPayload implements Message.
func (m *Response) MarshalPayload() ([]byte, error) { return []byte(m.Text), nil }

// Finish tells the peer the sender is done, with an exit status.
type Finish struct {
	Status int `cbor:"status"`
}

// MessageID implements Message.
func (m *Finish) MessageID() uint32 { return FinishID }

// MarshalPayload implements Message.
func (m *Finish) MarshalPayload() ([]byte, error) {
	data, err := cbor.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal finish: %w", err)
	}

	return data, nil
}

// Value is a message with a CBOR-encoded body of type T.
type Value[T any] struct {
	ID   uint32
	Body T
}

// MessageID implements Message.
func (m *Value[T]) MessageID() uint32 { return m.ID }

// MarshalPayload implements Message.
func (m *Value[T]) MarshalPayload() ([]byte, error) {
	data, err := cbor.Marshal(m.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal message %d: %w", m.ID, err)
	}

	return data, nil
}
