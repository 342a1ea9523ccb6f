package process

// ExecState is the result of a synchronous execution.
type ExecState int

const (
	// Done means the child was spawned and both output pipes were drained.
	Done ExecState = iota
	// Error means the child could not be spawned.
	Error
	// TimedOut is reserved for timeout enforcement, which is not implemented.
	TimedOut
)

// String implements fmt.Stringer.
func (s ExecState) String() string {
	switch s {
	case Done:
		return "done"
	case Error:
		return "error"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// ExecFlags modify Exec.
type ExecFlags uint

const (
	// NoExecFlags is the default behavior.
	NoExecFlags ExecFlags = 0
	// NoCloseStdin keeps the child's stdin open after spawning, so it can be
	// fed with Write. By default Exec closes it immediately.
	NoCloseStdin ExecFlags = 1 << 0
)

// Mode records whether the process was run with Exec or Start.
type Mode int

const (
	// Sync is set by Exec.
	Sync Mode = iota
	// Async is set by Start.
	Async
)

// Stream identifies one of the child's output streams.
type Stream int

const (
	// Stdout is the child's standard output.
	Stdout Stream = iota
	// Stderr is the child's standard error.
	Stderr
)

// String implements fmt.Stringer.
func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}

	return "stdout"
}
