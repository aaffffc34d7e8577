package session

import "io"

// Sink receives each chunk read from the port, in arrival order.
// A non-nil error ends the session loop. Chunks are copies and may be retained.
type Sink interface {
	Send(chunk []byte) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(chunk []byte) error

func (f SinkFunc) Send(chunk []byte) error { return f(chunk) }

// Discard returns a sink that drops every chunk.
func Discard() Sink {
	return SinkFunc(func([]byte) error { return nil })
}

// WriterSink forwards chunks to w. A failed or short write fails the sink.
func WriterSink(w io.Writer) Sink {
	return SinkFunc(func(chunk []byte) error {
		n, err := w.Write(chunk)
		if err != nil {
			return err
		}
		if n != len(chunk) {
			return io.ErrShortWrite
		}
		return nil
	})
}
