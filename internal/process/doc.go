// Package process runs a child process with redirected standard streams and
// streams its output as it arrives.
//
// Three OS pipes are created per child. Two reader goroutines drain the
// child's stdout and stderr into lock-protected buffers and emit a ready
// signal per chunk. The stdout reader holds the finalizer role: once its pipe
// reaches end-of-stream it waits for the child to exit, records the exit code
// and emits Finished.
//
// Exec runs synchronously and returns once both readers are done. Start
// returns as soon as the child is running; completion is observed through
// Finished, Wait or Close.
//
// Example usage:
//
//	p := process.New(log, process.Config{})
//	defer p.Close()
//
//	state, err := p.Exec("git", []string{"status"}, 0, process.NoExecFlags)
//	if state == process.Done {
//	    fmt.Print(string(p.Stdout()))
//	}
//
// Timeouts are accepted by Exec but not enforced, and nothing is retried.
package process
