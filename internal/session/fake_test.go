package session

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/allbin/serialterm"
)

// fakePort is a scripted Transport. Chunks pushed with feed are returned by
// Read in order, split to fit the caller's buffer.
type fakePort struct {
	timeout    time.Duration
	writeLimit int

	incoming chan []byte
	readErrs chan error

	mu      sync.Mutex
	pending []byte
	written bytes.Buffer
	writes  int
	closed  bool
}

func newFakePort() *fakePort {
	return &fakePort{
		timeout:  5 * time.Millisecond,
		incoming: make(chan []byte, 64),
		readErrs: make(chan error, 8),
	}
}

func (f *fakePort) feed(data string) { f.incoming <- []byte(data) }

func (f *fakePort) Read(buf []byte) (int, error) {
	f.mu.Lock()
	if len(f.pending) > 0 {
		n := copy(buf, f.pending)
		f.pending = f.pending[n:]
		f.mu.Unlock()
		return n, nil
	}
	f.mu.Unlock()

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case err := <-f.readErrs:
		return 0, err
	case chunk := <-f.incoming:
		n := copy(buf, chunk)
		f.mu.Lock()
		f.pending = append(f.pending, chunk[n:]...)
		f.mu.Unlock()
		return n, nil
	case <-timer.C:
		return 0, serial.ErrReadTimeout
	}
}

func (f *fakePort) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes++
	n := len(data)
	if f.writeLimit > 0 && n > f.writeLimit {
		n = f.writeLimit
	}
	f.written.Write(data[:n])
	return n, nil
}

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return errors.New("already closed")
	}
	f.closed = true
	return nil
}

func (f *fakePort) Written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written.String()
}

func (f *fakePort) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func openerFor(ports ...*fakePort) Opener {
	var mu sync.Mutex
	return OpenerFunc(func(string, int, time.Duration) (Transport, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(ports) == 0 {
			return nil, serial.ErrDeviceNotFound
		}
		p := ports[0]
		ports = ports[1:]
		return p, nil
	})
}

// collectSink records every chunk it receives.
type collectSink struct {
	mu     sync.Mutex
	chunks [][]byte
	fail   error
}

func (c *collectSink) Send(chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail != nil {
		return c.fail
	}
	c.chunks = append(c.chunks, chunk)
	return nil
}

func (c *collectSink) Joined() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(bytes.Join(c.chunks, nil))
}

func (c *collectSink) Chunks() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.chunks...)
}

// startSession runs Open in the background and waits until it is running.
func startSession(t *testing.T, s *State, sink Sink) <-chan error {
	t.Helper()

	errc := make(chan error, 1)
	go func() {
		errc <- s.Open(context.Background(), "/dev/ttyFAKE0", 9600, sink)
	}()
	require.Eventually(t, s.Running, time.Second, time.Millisecond)
	return errc
}

func waitStopped(t *testing.T, errc <-chan error) error {
	t.Helper()

	select {
	case err := <-errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("session loop did not stop")
		return nil
	}
}

func fill(s *State, data []byte) {
	s.bufMu.Lock()
	s.readBuf = append(s.readBuf, data...)
	s.bufMu.Unlock()
}
