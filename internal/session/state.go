package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// DefaultReadTimeout bounds each port read, and so how quickly Close and
	// queued writes take effect.
	DefaultReadTimeout = 50 * time.Millisecond
	// DefaultScratchSize is the largest chunk a single read can produce.
	DefaultScratchSize = 10 * 1024
)

// Session describes the running session.
type Session struct {
	ID       uuid.UUID `json:"id"`
	Port     string    `json:"port"`
	BaudRate int       `json:"baud_rate"`
	Started  time.Time `json:"started"`
}

type activeSession struct {
	info   Session
	cancel func()
	done   chan struct{}
}

// State is the session engine. The zero value is not usable; create one with New.
type State struct {
	opener      Opener
	fs          afero.Fs
	log         *zap.Logger
	readTimeout time.Duration
	scratchSize int

	active atomic.Pointer[activeSession]
	// last loop started, kept until the next Open so it can wait for it to drain
	last atomic.Pointer[activeSession]

	queueMu    sync.Mutex
	writeQueue []byte

	bufMu   sync.RWMutex
	readBuf []byte
}

// Option configures a State.
type Option func(*State)

// WithOpener replaces the serial device opener.
func WithOpener(opener Opener) Option {
	return func(s *State) {
		if opener != nil {
			s.opener = opener
		}
	}
}

// WithFs sets the filesystem Save writes to.
func WithFs(fs afero.Fs) Option {
	return func(s *State) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithLogger sets the logger for session lifecycle and loop diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(s *State) {
		if log != nil {
			s.log = log
		}
	}
}

// WithReadTimeout sets the per-read timeout. Non-positive values are ignored.
func WithReadTimeout(timeout time.Duration) Option {
	return func(s *State) {
		if timeout > 0 {
			s.readTimeout = timeout
		}
	}
}

// WithScratchSize sets the read buffer size. Non-positive values are ignored.
func WithScratchSize(size int) Option {
	return func(s *State) {
		if size > 0 {
			s.scratchSize = size
		}
	}
}

// New creates an idle State with empty buffers.
func New(opts ...Option) *State {
	s := &State{
		opener:      SerialOpener(),
		fs:          afero.NewOsFs(),
		log:         zap.NewNop(),
		readTimeout: DefaultReadTimeout,
		scratchSize: DefaultScratchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports whether a session is active.
func (s *State) Running() bool {
	return s.active.Load() != nil
}

// Active returns the running session, if any.
func (s *State) Active() (Session, bool) {
	sess := s.active.Load()
	if sess == nil {
		return Session{}, false
	}
	return sess.info, true
}
