// Package eventloop implements a single-threaded deferred-task queue.
//
// Tasks may be posted from any goroutine with CallLater and always run on
// the goroutine driving the loop (Run or ProcessPending). A turn runs only
// the tasks that were queued when it started; tasks posted while a turn is
// running are deferred to the next turn. DeleteLater builds on this to
// destroy an object only after the current call stack has unwound.
//
// Example usage:
//
//	loop := eventloop.New(log)
//	go func() {
//	    loop.CallLater(func() { fmt.Println("on the loop") })
//	}()
//	err := loop.Run(ctx)
package eventloop
