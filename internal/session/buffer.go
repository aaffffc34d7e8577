package session

import (
	"bufio"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// SaveMode selects how Save treats the accumulator. Both modes currently
// write the raw bytes unchanged.
type SaveMode int

const (
	SaveText SaveMode = iota
	SaveBinary
)

func (m SaveMode) String() string {
	switch m {
	case SaveText:
		return "text"
	case SaveBinary:
		return "binary"
	default:
		return fmt.Sprintf("SaveMode(%d)", int(m))
	}
}

// Len returns the number of bytes in the read accumulator.
func (s *State) Len() int {
	s.bufMu.RLock()
	defer s.bufMu.RUnlock()
	return len(s.readBuf)
}

// Usage returns the accumulator size, or ErrOverflow if it does not fit a uint32.
func (s *State) Usage() (uint32, error) {
	return usageFromLen(s.Len())
}

func usageFromLen(n int) (uint32, error) {
	if uint64(n) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrOverflow, n)
	}
	return uint32(n), nil
}

// Clear empties the read accumulator.
func (s *State) Clear() {
	s.bufMu.Lock()
	cleared := len(s.readBuf)
	s.readBuf = nil
	s.bufMu.Unlock()

	s.log.Debug("cleared buffer", zap.Int("bytes", cleared))
}

// Save writes the accumulator to path, creating or truncating it. With
// dumpAfter the accumulator is cleared, but only if the write succeeded.
// Save does not need a running session.
func (s *State) Save(path string, mode SaveMode, dumpAfter bool) error {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()

	size := len(s.readBuf)
	if err := s.writeFile(path); err != nil {
		s.log.Warn("save failed", zap.String("path", path), zap.Error(err))
		return &WriteError{Path: path, Err: err}
	}

	if dumpAfter {
		s.readBuf = nil
	}
	s.log.Info("saved buffer",
		zap.String("path", path),
		zap.Stringer("mode", mode),
		zap.Int("bytes", size),
		zap.Bool("dumped", dumpAfter),
	)
	return nil
}

// writeFile must be called with bufMu held.
func (s *State) writeFile(path string) error {
	f, err := s.fs.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	_, werr := w.Write(s.readBuf)
	ferr := w.Flush()
	cerr := f.Close()

	switch {
	case werr != nil:
		return werr
	case ferr != nil:
		return ferr
	default:
		return cerr
	}
}
