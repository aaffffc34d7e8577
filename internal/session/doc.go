// Package session implements the serial session engine.
//
// A State owns three pieces of shared data: the active session token, the
// outbound write queue and the inbound read accumulator. Open runs the
// session loop inline until Close is called, the caller's context is done,
// or the streaming sink fails. While it runs, the loop is the only goroutine
// touching the port: each iteration it drains the write queue into the port,
// performs one bounded read and forwards what arrived to the sink before
// appending it to the accumulator.
//
// The remaining operations never touch the port. Write appends to the queue
// under a mutex; Usage and Search read the accumulator under a read lock;
// Clear and Save take the write lock. No operation holds both locks.
//
//	state := session.New(session.WithLogger(logger))
//	go func() {
//	    err := state.Open(ctx, "/dev/ttyUSB0", 115200, session.WriterSink(os.Stdout))
//	    ...
//	}()
//	_ = state.Write([]byte("AT\r\n"))
//	matches, _ := state.Search(`OK|ERROR`)
//	_ = state.Close()
package session
