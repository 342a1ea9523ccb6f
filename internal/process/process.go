package process

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/ipclink-go/internal/errors"
	"github.com/wagiedev/ipclink-go/internal/signal"
)

// Config configures a Process.
type Config struct {
	// ReadBufferSize bounds a single pipe read. Zero selects DefaultReadBufferSize.
	ReadBufferSize int
	// Dir is the child's working directory. Empty uses the current directory.
	Dir string
}

// Process runs one child process. A Process is single-use.
type Process struct {
	log      *slog.Logger
	readSize int
	dir      string

	// mu protects the output buffers, the exit state and the handles below.
	// It is never held across a blocking read, a wait or a signal emission.
	mu          sync.Mutex
	stdout      bytes.Buffer
	stderr      bytes.Buffer
	mode        Mode
	started     bool
	cmd         *exec.Cmd
	pid         int
	stdin       *os.File
	stdoutPipe  *os.File
	stderrPipe  *os.File
	waiting     bool
	finished    bool
	exitCode    int
	hasExitCode bool
	errorString string
	finishedCh  chan struct{}

	readers        errgroup.Group
	readersStarted bool
	joinOnce       sync.Once

	readyReadStdout signal.Signal[*Process]
	readyReadStderr signal.Signal[*Process]
	finishedSig     signal.Signal[*Process]
}

// New creates a Process. Nothing is spawned until Exec or Start.
func New(log *slog.Logger, cfg Config) *Process {
	readSize := cfg.ReadBufferSize
	if readSize <= 0 {
		readSize = DefaultReadBufferSize
	}

	return &Process{
		log:        log.With("component", "process", "process_id", ulid.Make().String()),
		readSize:   readSize,
		dir:        cfg.Dir,
		finishedCh: make(chan struct{}),
	}
}

// ReadyReadStdout is emitted from the stdout reader after each chunk is buffered.
func (p *Process) ReadyReadStdout() *signal.Signal[*Process] { return &p.readyReadStdout }

// ReadyReadStderr is emitted from the stderr reader after each chunk is buffered.
func (p *Process) ReadyReadStderr() *signal.Signal[*Process] { return &p.readyReadStderr }

// Finished is emitted exactly once, after the exit code is recorded. Slots
// run on the finalizing goroutine and must not call Close.
func (p *Process) Finished() *signal.Signal[*Process] { return &p.finishedSig }

// Exec spawns command and blocks until the child has closed its output
// pipes and exited. The timeout is accepted but not enforced.
func (p *Process) Exec(command string, args []string, timeout time.Duration, flags ExecFlags) (ExecState, error) {
	p.log.Debug("Exec", "command", command, "args", args, "timeout", timeout)

	if err := p.start(Sync, command, args, nil, flags); err != nil {
		return Error, err
	}

	p.joinReaders()

	return Done, nil
}

// Start spawns command and returns once it is running. An empty env inherits
// the parent's environment; otherwise env entries have the form "KEY=value".
// The child's stdin stays open for Write until CloseStdin.
func (p *Process) Start(command string, args, env []string) error {
	p.log.Debug("Start", "command", command, "args", args)

	return p.start(Async, command, args, env, NoCloseStdin)
}

func (p *Process) start(mode Mode, command string, args, env []string, flags ExecFlags) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()

		return errors.ErrAlreadyStarted
	}

	p.started = true
	p.mode = mode
	p.mu.Unlock()

	cmd, stdin, stdout, stderr, err := p.spawn(command, args, env)
	if err != nil {
		p.mu.Lock()
		p.started = false
		p.errorString = err.Error()
		p.mu.Unlock()

		p.log.Error("Failed to spawn process", "command", command, "error", err)

		return err
	}

	p.mu.Lock()
	p.cmd = cmd
	p.pid = cmd.Process.Pid
	p.stdin = stdin
	p.stdoutPipe = stdout
	p.stderrPipe = stderr
	p.readersStarted = true
	p.mu.Unlock()

	p.log.Info("Process started", "command", command, "pid", cmd.Process.Pid)

	if flags&NoCloseStdin == 0 {
		if err := p.CloseStdin(); err != nil {
			p.log.Debug("Closing stdin failed", "error", err)
		}
	}

	p.readers.Go(newPipeReader(p, Stdout, stdout, finalizerRole).run)
	p.readers.Go(newPipeReader(p, Stderr, stderr, plainRole).run)

	return nil
}

// spawn creates the three pipes and launches the child. On failure every
// pipe end created so far is closed.
func (p *Process) spawn(command string, args, env []string) (cmd *exec.Cmd, stdin, stdout, stderr *os.File, err error) {
	var opened []*os.File

	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	var ends [3][2]*os.File // [stdin, stdout, stderr][read, write]

	for i := range ends {
		r, w, pipeErr := os.Pipe()
		if pipeErr != nil {
			closeAll()

			return nil, nil, nil, nil, &errors.SpawnError{Stage: "create pipes", Command: command, Err: pipeErr}
		}

		ends[i] = [2]*os.File{r, w}
		opened = append(opened, r, w)
	}

	//nolint:gosec // G204: running caller-supplied commands is the purpose of this package
	cmd = exec.Command(command, args...)
	cmd.Dir = p.dir

	if len(env) > 0 {
		cmd.Env = env
	}

	// Only the child's ends are handed to the child; the parent's ends keep
	// close-on-exec and are not inherited.
	cmd.Stdin = ends[0][0]
	cmd.Stdout = ends[1][1]
	cmd.Stderr = ends[2][1]

	if startErr := cmd.Start(); startErr != nil {
		closeAll()

		return nil, nil, nil, nil, &errors.SpawnError{Stage: "start process", Command: command, Err: startErr}
	}

	// Drop our copies of the child's ends so reads see end-of-stream once the
	// child exits.
	_ = ends[0][0].Close()
	_ = ends[1][1].Close()
	_ = ends[2][1].Close()

	return cmd, ends[0][1], ends[1][0], ends[2][0], nil
}

func (p *Process) appendOutput(stream Stream, data []byte) {
	p.mu.Lock()
	if stream == Stderr {
		p.stderr.Write(data)
	} else {
		p.stdout.Write(data)
	}
	p.mu.Unlock()

	if stream == Stderr {
		p.readyReadStderr.Emit(p)
	} else {
		p.readyReadStdout.Emit(p)
	}
}

// Wait blocks until the child has exited and its exit code is recorded.
//
// The first caller waits on the OS, records the exit code, invalidates the
// process handle and emits Finished. Callers that arrive while that is in
// progress block until it completes; later callers, and callers on a process
// that was never started, return immediately.
//
// A call made while Start or Exec is still spawning the child sees no
// process yet and is a no-op; call Wait after Start has returned.
func (p *Process) Wait() {
	p.mu.Lock()
	if p.waiting {
		done := p.finishedCh
		p.mu.Unlock()
		<-done

		return
	}

	if p.cmd == nil {
		p.mu.Unlock()

		return
	}

	p.waiting = true
	cmd := p.cmd
	p.mu.Unlock()

	err := cmd.Wait()

	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	if _, isExit := stderrors.AsType[*exec.ExitError](err); err != nil && !isExit {
		p.log.Error("Error waiting for process to finish", "error", err)
	}

	p.mu.Lock()
	p.exitCode = code
	p.hasExitCode = true
	p.finished = true
	p.cmd = nil
	p.mu.Unlock()

	p.log.Info("Process finished", "pid", cmd.Process.Pid, "exit_code", code)

	close(p.finishedCh)
	p.finishedSig.Emit(p)
}

// joinReaders waits for both reader goroutines. Only the first call waits.
func (p *Process) joinReaders() {
	p.mu.Lock()
	started := p.readersStarted
	p.mu.Unlock()

	if !started {
		return
	}

	p.joinOnce.Do(func() {
		if err := p.readers.Wait(); err != nil {
			p.mu.Lock()
			p.errorString = err.Error()
			p.mu.Unlock()

			p.log.Warn("Pipe reader failed", "error", err)
		}
	})
}

// Close waits for the child to exit, joins the readers and releases every
// remaining pipe. It is safe to call Close multiple times.
func (p *Process) Close() error {
	p.Wait()
	p.joinReaders()

	p.mu.Lock()
	files := []*os.File{p.stdin, p.stdoutPipe, p.stderrPipe}
	p.stdin, p.stdoutPipe, p.stderrPipe = nil, nil, nil
	p.mu.Unlock()

	var errs []error

	for _, f := range files {
		if f == nil {
			continue
		}

		if err := f.Close(); err != nil && !stderrors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}

	return stderrors.Join(errs...)
}

// Write sends data to the child's stdin.
func (p *Process) Write(data []byte) (int, error) {
	p.mu.Lock()
	stdin := p.stdin
	p.mu.Unlock()

	if stdin == nil {
		return 0, errors.ErrStdinClosed
	}

	n, err := stdin.Write(data)
	if err != nil {
		return n, fmt.Errorf("write to stdin: %w", err)
	}

	return n, nil
}

// CloseStdin closes the child's stdin so it observes end of input.
func (p *Process) CloseStdin() error {
	p.mu.Lock()
	stdin := p.stdin
	p.stdin = nil
	p.mu.Unlock()

	if stdin == nil {
		return nil
	}

	return stdin.Close()
}

// Kill sends SIGKILL to the child. Completion is still reported through
// Finished and Wait.
func (p *Process) Kill() error {
	p.mu.Lock()
	cmd, finished := p.cmd, p.finished
	p.mu.Unlock()

	if cmd == nil {
		if finished {
			return nil
		}

		return errors.ErrNotStarted
	}

	p.log.Debug("Killing process", "pid", cmd.Process.Pid)

	if err := cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill process (pid %d): %w", cmd.Process.Pid, err)
	}

	return nil
}

// Stdout returns a copy of everything the child has written to stdout.
func (p *Process) Stdout() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	return bytes.Clone(p.stdout.Bytes())
}

// Stderr returns a copy of everything the child has written to stderr.
func (p *Process) Stderr() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	return bytes.Clone(p.stderr.Bytes())
}

// ReadAllStdout returns the buffered stdout and clears the buffer.
func (p *Process) ReadAllStdout() []byte {
	return p.drain(&p.stdout)
}

// ReadAllStderr returns the buffered stderr and clears the buffer.
func (p *Process) ReadAllStderr() []byte {
	return p.drain(&p.stderr)
}

func (p *Process) drain(buf *bytes.Buffer) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := bytes.Clone(buf.Bytes())
	buf.Reset()

	return out
}

// ExitCode returns the child's exit code once it has finished. A child
// killed by a signal reports -1.
func (p *Process) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.exitCode, p.hasExitCode
}

// IsFinished reports whether the exit code has been recorded.
func (p *Process) IsFinished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.finished
}

// Pid returns the child's process id, or 0 if it was never started.
func (p *Process) Pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.pid
}

// Mode returns how the process was run.
func (p *Process) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.mode
}

// ErrorString returns the last spawn or read error, or "".
func (p *Process) ErrorString() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.errorString
}

// Compile-time check that a Process can feed a child like any writer.
var _ io.Writer = (*Process)(nil)
