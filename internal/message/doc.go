// Package message defines the application messages carried inside frames
// and the registry that decodes them.
//
// A frame body is a 4-byte big-endian message id followed by an opaque
// payload. The Registry maps ids to factories that turn the payload into a
// typed Message. Payloads of the built-in typed messages are CBOR encoded.
package message
