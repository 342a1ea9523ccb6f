package chunk

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueue_PushAndLen(t *testing.T) {
	var q Queue

	q.Push([]byte("abc"))
	q.Push(nil)
	q.Push([]byte("de"))

	require.Equal(t, 5, q.Len())
	require.Equal(t, 2, q.Chunks())
}

func TestQueue_ConsumeAcrossChunks(t *testing.T) {
	var q Queue

	q.Push([]byte("ab"))
	q.Push([]byte("cdef"))
	q.Push([]byte("g"))

	dst := make([]byte, 3)
	require.Equal(t, 3, q.Consume(dst))
	require.Equal(t, "abc", string(dst))
	require.Equal(t, 4, q.Len())
	require.Equal(t, 2, q.Chunks())

	dst = make([]byte, 4)
	q.Consume(dst)
	require.Equal(t, "defg", string(dst))
	require.Zero(t, q.Len())
	require.Zero(t, q.Chunks())
}

func TestQueue_PartialConsumeShrinksInPlace(t *testing.T) {
	var q Queue

	chunk := []byte("hello")
	q.Push(chunk)

	dst := make([]byte, 2)
	q.Consume(dst)

	require.Equal(t, "he", string(dst))
	require.Equal(t, 1, q.Chunks())
	// Remaining bytes were moved to the front of the original backing array.
	require.Equal(t, "llo", string(chunk[:3]))
	require.Equal(t, 3, q.Len())
}

func TestQueue_ConsumeZero(t *testing.T) {
	var q Queue

	require.Zero(t, q.Consume(nil))

	q.Push([]byte("x"))
	require.Zero(t, q.Consume([]byte{}))
	require.Equal(t, 1, q.Len())
}

func TestQueue_ConsumeMoreThanBufferedPanics(t *testing.T) {
	var q Queue

	q.Push([]byte("abc"))

	require.Panics(t, func() {
		q.Consume(make([]byte, 4))
	})
}

func TestQueue_Reset(t *testing.T) {
	var q Queue

	q.Push([]byte("abc"))
	q.Reset()

	require.Zero(t, q.Len())
	require.Zero(t, q.Chunks())
}

// TestQueue_RandomizedSplits pushes a byte sequence in random chunk sizes and
// consumes it in unrelated random sizes; the output must equal the input.
func TestQueue_RandomizedSplits(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for iter := range 200 {
		input := make([]byte, 1+rng.IntN(2048))
		for i := range input {
			input[i] = byte(rng.IntN(256))
		}

		var (
			q      Queue
			output bytes.Buffer
			pushed int
		)

		for pushed < len(input) || q.Len() > 0 {
			if pushed < len(input) && (q.Len() == 0 || rng.IntN(2) == 0) {
				n := min(1+rng.IntN(64), len(input)-pushed)
				chunk := make([]byte, n)
				copy(chunk, input[pushed:pushed+n])
				q.Push(chunk)
				pushed += n

				continue
			}

			n := 1 + rng.IntN(q.Len())
			dst := make([]byte, n)
			q.Consume(dst)
			output.Write(dst)
		}

		require.Equal(t, input, output.Bytes(), "iteration %d", iter)
	}
}
