package session

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allbin/serialterm"
)

// Open acquires portName and runs the session loop until Close is called,
// ctx is done or sink fails. It returns nil on a requested stop, an
// *OpenError if the port could not be opened, ErrAlreadyRunning if another
// session is active and a *SinkError if the sink failed.
//
// A nil sink discards chunks.
func (s *State) Open(ctx context.Context, portName string, baudRate int, sink Sink) error {
	if s.active.Load() != nil {
		return ErrAlreadyRunning
	}
	if sink == nil {
		sink = Discard()
	}

	// A stopped loop may still be finishing its last read.
	if prev := s.last.Load(); prev != nil {
		select {
		case <-prev.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	port, err := s.opener.Open(portName, baudRate, s.readTimeout)
	if err != nil {
		s.log.Warn("open failed", zap.String("port", portName), zap.Error(err))
		return &OpenError{Port: portName, Err: err}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	sess := &activeSession{
		info: Session{
			ID:       uuid.New(),
			Port:     portName,
			BaudRate: baudRate,
			Started:  time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if !s.active.CompareAndSwap(nil, sess) {
		cancel()
		_ = port.Close()
		return ErrAlreadyRunning
	}
	s.last.Store(sess)

	log := s.log.With(
		zap.String("session", sess.info.ID.String()),
		zap.String("port", portName),
	)
	log.Info("session started", zap.Int("baud", baudRate))

	err = s.run(loopCtx, port, sink, log)

	cancel()
	s.active.CompareAndSwap(sess, nil)
	s.dropQueue(log)
	if cerr := port.Close(); cerr != nil {
		log.Debug("close port", zap.Error(cerr))
	}
	close(sess.done)

	if err != nil {
		log.Error("session stopped", zap.Error(err))
		return err
	}
	log.Info("session stopped", zap.Duration("uptime", time.Since(sess.info.Started)))
	return nil
}

// Close requests the running session to stop and returns without waiting.
// The loop observes the request within one read timeout.
func (s *State) Close() error {
	sess := s.active.Swap(nil)
	if sess == nil {
		return ErrNotRunning
	}
	sess.cancel()
	s.log.Info("session stop requested", zap.String("session", sess.info.ID.String()))
	return nil
}

// Write queues payload for transmission on the next loop iteration.
func (s *State) Write(payload []byte) error {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	if s.active.Load() == nil {
		return ErrNotRunning
	}
	s.writeQueue = append(s.writeQueue, payload...)
	return nil
}

func (s *State) run(ctx context.Context, port Transport, sink Sink, log *zap.Logger) error {
	scratch := make([]byte, s.scratchSize)

	for {
		if ctx.Err() != nil {
			return nil
		}

		s.flushQueue(port, log)

		n, err := port.Read(scratch)
		if err != nil {
			if !errors.Is(err, serial.ErrReadTimeout) {
				log.Debug("read failed", zap.Error(err))
				s.pause(ctx)
			}
			continue
		}
		if n == 0 {
			// hangup: the device reports readable but has nothing to give
			s.pause(ctx)
			continue
		}

		chunk := bytes.Clone(scratch[:n])
		if err := sink.Send(chunk); err != nil {
			return &SinkError{Err: err}
		}

		s.bufMu.Lock()
		s.readBuf = append(s.readBuf, chunk...)
		s.bufMu.Unlock()
	}
}

// flushQueue hands the whole queue to the port in one write and clears it.
// Bytes the port did not accept are dropped.
func (s *State) flushQueue(port Transport, log *zap.Logger) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	queued := len(s.writeQueue)
	if queued == 0 {
		return
	}

	n, err := port.Write(s.writeQueue)
	switch {
	case err != nil:
		log.Warn("write failed", zap.Int("queued", queued), zap.Int("written", n), zap.Error(err))
	case n < queued:
		log.Warn("short write", zap.Int("written", n), zap.Int("dropped", queued-n))
	default:
		log.Debug("wrote queue", zap.Int("written", n))
	}
	s.writeQueue = s.writeQueue[:0]
}

// dropQueue discards bytes queued for a session that has ended.
func (s *State) dropQueue(log *zap.Logger) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	if len(s.writeQueue) > 0 {
		log.Warn("discarding unsent bytes", zap.Int("dropped", len(s.writeQueue)))
	}
	s.writeQueue = nil
}

func (s *State) pause(ctx context.Context) {
	timer := time.NewTimer(s.readTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
