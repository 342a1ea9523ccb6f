// Package connection implements length-prefixed message framing over a
// duplex byte stream.
//
// Each frame on the wire is a 4-byte big-endian length followed by that many
// bytes: a 4-byte big-endian message id and the message payload.
//
//	[u32 length][u32 message id][length-4 bytes payload]
//
// A Connection is driven entirely by one event-loop goroutine: the stream's
// readiness signals, the deferred tasks and every public method must run on
// it. There is no internal locking. Incoming bytes are queued as owned chunks
// and every complete frame already buffered is decoded and delivered through
// the NewMessage signal before the read handler returns, whatever the
// fragmentation of the input.
//
// Example usage:
//
//	conn := connection.New(log, loop, stream, message.NewDefaultRegistry(log))
//	conn.NewMessage().Connect(func(d connection.Delivery) {
//	    fmt.Println(d.Message.MessageID())
//	})
//	conn.Send(42, payload)
//	conn.Finish() // close and destroy once everything is written
package connection
