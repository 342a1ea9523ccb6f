// Package socket provides the event-loop driven byte stream used by
// connection.Connection, over unix-domain or TCP sockets.
//
// Blocking socket I/O happens on two goroutines per client (one reader, one
// writer). They never touch client state directly: every observation is
// posted to the event loop, so the client's buffer and signals are only ever
// used on the loop goroutine.
package socket
