// Package chunk provides an ordered queue of owned byte chunks with
// byte-exact partial consumption.
//
// Chunks are consumed front to back. A chunk that is fully consumed is
// removed; a chunk that is only partly consumed is shrunk in place, its
// remaining bytes moved to the front of its own backing array.
package chunk

import "fmt"

// Queue holds byte chunks in arrival order. It is not safe for concurrent
// use; the framing transport only touches it from its event-loop goroutine.
type Queue struct {
	chunks [][]byte
	size   int
}

// Push appends chunk to the queue. The queue takes ownership of chunk:
// callers must not modify it afterwards. Empty chunks are ignored.
func (q *Queue) Push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	q.chunks = append(q.chunks, chunk)
	q.size += len(chunk)
}

// Len returns the total number of buffered bytes across all chunks.
func (q *Queue) Len() int {
	return q.size
}

// Chunks returns the number of queued chunks.
func (q *Queue) Chunks() int {
	return len(q.chunks)
}

// Consume copies exactly len(dst) bytes from the front of the queue into dst
// and returns len(dst). It panics if fewer than len(dst) bytes are buffered.
func (q *Queue) Consume(dst []byte) int {
	want := len(dst)
	if want > q.size {
		panic(fmt.Sprintf("chunk: consume %d bytes with only %d buffered", want, q.size))
	}

	n := 0
	for n < want {
		front := q.chunks[0]
		cur := copy(dst[n:], front)
		n += cur

		if cur == len(front) {
			q.chunks[0] = nil
			q.chunks = q.chunks[1:]

			continue
		}

		// Partially consumed: only possible for the last chunk touched.
		rest := copy(front, front[cur:])
		q.chunks[0] = front[:rest]
	}

	q.size -= want
	if len(q.chunks) == 0 {
		q.chunks = nil
	}

	return want
}

// Reset drops every queued chunk.
func (q *Queue) Reset() {
	q.chunks = nil
	q.size = 0
}
