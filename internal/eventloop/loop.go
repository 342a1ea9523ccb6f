package eventloop

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wagiedev/ipclink-go/internal/errors"
)

// Destroyer is implemented by objects that can be scheduled for destruction
// with DeleteLater.
type Destroyer interface {
	Destroy()
}

// Loop is a deferred-task queue driven by a single goroutine.
type Loop struct {
	log *slog.Logger

	mu    sync.Mutex
	tasks []func()

	wake     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
}

// New creates an event loop.
func New(log *slog.Logger) *Loop {
	return &Loop{
		log:  log.With("component", "eventloop"),
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
}

// CallLater queues fn to run on the next loop turn. Safe for concurrent use.
func (l *Loop) CallLater(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// DeleteLater queues d.Destroy to run on the next loop turn.
func (l *Loop) DeleteLater(d Destroyer) {
	l.CallLater(d.Destroy)
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.tasks)
}

// ProcessPending runs one turn: every task queued before the call, in order.
// It returns the number of tasks run.
func (l *Loop) ProcessPending() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}

	return len(tasks)
}

// Run drives the loop until ctx is cancelled or Quit is called.
// It returns ctx.Err() or ErrLoopStopped.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Debug("Event loop running")

	for {
		l.ProcessPending()

		select {
		case <-ctx.Done():
			l.log.Debug("Event loop context done", "error", ctx.Err())

			return ctx.Err()
		case <-l.quit:
			// Drain what was posted before Quit so deferred destruction completes.
			l.ProcessPending()
			l.log.Debug("Event loop stopped")

			return errors.ErrLoopStopped
		case <-l.wake:
		}
	}
}

// Quit stops Run. It is safe to call Quit multiple times.
func (l *Loop) Quit() {
	l.quitOnce.Do(func() {
		close(l.quit)
	})
}
