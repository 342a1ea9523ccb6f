package process

import (
	stderrors "errors"
	"io"
	"log/slog"
	"os"

	"github.com/wagiedev/ipclink-go/internal/errors"
)

// DefaultReadBufferSize bounds a single pipe read.
const DefaultReadBufferSize = 4096

// readerRole tells a pipeReader whether it drives process finalization.
type readerRole int

const (
	plainRole readerRole = iota
	finalizerRole
)

// pipeReader drains one pipe into the owning process's output buffer.
type pipeReader struct {
	log    *slog.Logger
	proc   *Process
	stream Stream
	pipe   io.Reader
	role   readerRole
	size   int
}

func newPipeReader(proc *Process, stream Stream, pipe io.Reader, role readerRole) *pipeReader {
	return &pipeReader{
		log:    proc.log.With("stream", stream.String()),
		proc:   proc,
		stream: stream,
		pipe:   pipe,
		role:   role,
		size:   proc.readSize,
	}
}

// run reads until the pipe closes or fails, then finalizes the process if
// this reader holds the finalizer role. A closed pipe is normal termination.
func (r *pipeReader) run() error {
	var readErr error

	buf := make([]byte, r.size)

	for {
		n, err := r.pipe.Read(buf)
		if n > 0 {
			r.proc.appendOutput(r.stream, buf[:n])
		}

		if err == nil {
			continue
		}

		if !isPipeClosed(err) {
			r.log.Error("Error while reading from child process", "error", err)

			readErr = &errors.PipeReadError{Stream: r.stream.String(), Err: err}
		}

		break
	}

	r.log.Debug("Pipe reader stopped")

	if r.role == finalizerRole {
		r.proc.Wait()
	}

	return readErr
}

// isPipeClosed reports whether err means the write end went away (the child
// exited) or the read end was closed by us.
func isPipeClosed(err error) bool {
	return stderrors.Is(err, io.EOF) || stderrors.Is(err, os.ErrClosed)
}
