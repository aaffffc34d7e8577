// Package command exposes the session engine as a small set of front-end
// operations taking strings and primitives, and applies the boundary error
// policy to everything they return.
package command

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/session"
)

// SaveOK is the marker Save returns on success.
const SaveOK uint8 = 1

// Handler dispatches front-end commands to a session State.
type Handler struct {
	state   *session.State
	log     *zap.Logger
	detail  bool
	saveDir string

	listPorts func() ([]string, error)
	portInfo  func(string) (*serial.PortInfo, error)
}

// Option configures a Handler.
type Option func(*Handler)

// WithErrorDetail controls whether Error.Detail carries the underlying error text.
func WithErrorDetail(detail bool) Option {
	return func(h *Handler) {
		h.detail = detail
	}
}

// WithLogger sets the logger used to record failed commands.
func WithLogger(log *zap.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithSaveDir sets the directory relative save paths resolve against.
func WithSaveDir(dir string) Option {
	return func(h *Handler) {
		h.saveDir = dir
	}
}

// NewHandler creates a Handler for state.
func NewHandler(state *session.State, opts ...Option) *Handler {
	h := &Handler{
		state:     state,
		log:       zap.NewNop(),
		detail:    true,
		listPorts: serial.ListPorts,
		portInfo:  serial.GetPortInfo,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open runs a session on portName until Close is called or sink fails.
// It blocks for the lifetime of the session.
func (h *Handler) Open(ctx context.Context, portName string, baudRate uint, sink session.Sink) error {
	if baudRate > math.MaxInt32 {
		err := &session.OpenError{
			Port: portName,
			Err:  fmt.Errorf("%w: %d", serial.ErrInvalidBaudRate, baudRate),
		}
		return h.fail("open", err)
	}
	return h.fail("open", h.state.Open(ctx, portName, int(baudRate), sink))
}

// Close requests the running session to stop.
func (h *Handler) Close() error {
	return h.fail("close", h.state.Close())
}

// Write queues payload for transmission.
func (h *Handler) Write(payload string) error {
	return h.fail("write", h.state.Write([]byte(payload)))
}

// Usage returns the number of accumulated bytes.
func (h *Handler) Usage() (uint32, error) {
	usage, err := h.state.Usage()
	if err != nil {
		return 0, h.fail("usage", err)
	}
	return usage, nil
}

// Save writes the accumulated bytes to path and returns SaveOK. Relative
// paths resolve against the save directory.
func (h *Handler) Save(path string, binaryMode, dumpAfter bool) (uint8, error) {
	mode := session.SaveText
	if binaryMode {
		mode = session.SaveBinary
	}
	if err := h.state.Save(h.resolve(path), mode, dumpAfter); err != nil {
		return 0, h.fail("save", err)
	}
	return SaveOK, nil
}

// Clear empties the accumulated bytes.
func (h *Handler) Clear() {
	h.state.Clear()
}

// Search returns every match of pattern in the accumulated bytes.
func (h *Handler) Search(pattern string) ([]session.Match, error) {
	matches, err := h.state.Search(pattern)
	if err != nil {
		return nil, h.fail("search", err)
	}
	return matches, nil
}

// Active describes the running session, if any.
func (h *Handler) Active() (session.Session, bool) {
	return h.state.Active()
}

// Ports lists the serial ports a session can be opened on. Ports that
// disappear while being inspected are skipped.
func (h *Handler) Ports() ([]serial.PortInfo, error) {
	paths, err := h.listPorts()
	if err != nil {
		return nil, h.fail("ports", err)
	}

	infos := make([]serial.PortInfo, 0, len(paths))
	for _, path := range paths {
		info, err := h.portInfo(path)
		if err != nil {
			h.log.Debug("skipping port", zap.String("port", path), zap.Error(err))
			continue
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

func (h *Handler) resolve(path string) string {
	if h.saveDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.saveDir, path)
}

func (h *Handler) fail(op string, err error) error {
	if err == nil {
		return nil
	}

	cmdErr := &Error{Kind: classify(err), err: err}
	if h.detail {
		cmdErr.Detail = err.Error()
	}
	h.log.Debug("command failed",
		zap.String("op", op),
		zap.String("kind", string(cmdErr.Kind)),
		zap.Error(err),
	)
	return cmdErr
}
