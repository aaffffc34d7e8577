package session

import (
	"time"

	"github.com/allbin/serialterm"
)

// Transport is the part of a serial port the session loop needs.
// Read must return serial.ErrReadTimeout when no data arrived within the read timeout.
type Transport interface {
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
	Close() error
}

// Opener acquires a Transport for a port name.
type Opener interface {
	Open(portName string, baudRate int, readTimeout time.Duration) (Transport, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(portName string, baudRate int, readTimeout time.Duration) (Transport, error)

func (f OpenerFunc) Open(portName string, baudRate int, readTimeout time.Duration) (Transport, error) {
	return f(portName, baudRate, readTimeout)
}

// SerialOpener opens real devices through serial.Open. The extra options are
// applied before the baud rate and read timeout chosen per session.
func SerialOpener(opts ...serial.Option) Opener {
	return OpenerFunc(func(portName string, baudRate int, readTimeout time.Duration) (Transport, error) {
		all := append([]serial.Option{}, opts...)
		all = append(all, serial.WithBaudRate(baudRate), serial.WithReadTimeout(readTimeout))
		return serial.Open(portName, all...)
	})
}
