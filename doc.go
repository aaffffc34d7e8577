// Package serial provides the serial port transport used by serialterm.
//
// Ports are opened in raw mode with a short, bounded read timeout so a single
// goroutine can interleave writes and reads on the same descriptor without
// ever blocking for long.
//
// # Basic Usage
//
// Open a serial port with default configuration (115200 8N1, 50ms read timeout):
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	n, err := port.Write([]byte("AT\r\n"))
//	buffer := make([]byte, 256)
//	n, err = port.Read(buffer)
//	if errors.Is(err, serial.ErrReadTimeout) {
//	    // nothing arrived within the read timeout
//	}
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(9600),
//	    serial.WithParity(serial.ParityEven),
//	    serial.WithReadTimeout(100*time.Millisecond),
//	    serial.WithSyncWrite(),
//	)
//
// The read timeout has millisecond resolution. Reads wait in poll(2) rather
// than relying on VTIME, whose granularity is a tenth of a second.
//
// # Port Discovery
//
// List available serial ports and get USB device metadata:
//
//	ports, err := serial.ListPorts()
//	for _, portPath := range ports {
//	    info, _ := serial.GetPortInfo(portPath)
//	    fmt.Printf("%s: %s (VID=%s PID=%s Serial=%s)\n",
//	        info.Path, info.Description, info.VendorID, info.ProductID, info.SerialNumber)
//	}
//
// # Error Handling
//
// Open classifies errno values onto sentinel errors, keeping the original
// errno in the chain:
//
//	if errors.Is(err, serial.ErrDeviceInUse) {
//	    // another process holds the exclusive lock
//	}
//
// # Default Configuration
//
//   - BaudRate: 115200
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - ReadTimeout: 50ms
//   - WriteMode: Buffered
//   - Exclusive: true
package serial
