// Package ipclink moves discrete messages between processes.
//
// It has two halves. A Connection turns a duplex byte stream (a unix or tcp
// socket) into ordered, length-prefixed messages, and a Process runs a child
// program while collecting its stdout and stderr in the background.
//
// # Event loop
//
// Connections are driven by a Loop. Socket goroutines post everything they
// observe to the loop, and every Connection method and signal runs on the
// goroutine that drives it:
//
//	loop := ipclink.NewLoop()
//	conn, err := ipclink.Dial(ctx, loop, "/tmp/ipclink.sock",
//	    ipclink.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conn.Destroyed().Connect(func(*ipclink.Connection) { loop.Quit() })
//	loop.CallLater(func() {
//	    conn.Write("hello")
//	    conn.FinishWithStatus(0)
//	})
//
//	_ = loop.Run(ctx)
//
// # Wire format
//
// Every frame is a 4-byte big-endian length followed by a 4-byte big-endian
// message id and the payload. The length counts the id and the payload.
// Incoming frames are decoded through a Registry; Response and Finish are
// registered by default and typed payloads can be added with CBORFactory.
//
// # Processes
//
//	proc := ipclink.NewProcess()
//	state, err := proc.Exec("git", []string{"status"}, 0, ipclink.NoExecFlags)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(state, string(proc.Stdout()))
//
// Start runs the child asynchronously; Finished is emitted once when it exits.
//
// # Error Handling
//
// Failures are reported with typed errors:
//
//	if _, err := proc.Exec(cmd, args, 0, ipclink.NoExecFlags); err != nil {
//	    if spawnErr, ok := errors.AsType[*ipclink.SpawnError](err); ok {
//	        log.Fatalf("could not %s %s: %v", spawnErr.Stage, spawnErr.Command, spawnErr.Err)
//	    }
//	}
package ipclink
