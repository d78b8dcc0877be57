package protocol

import "time"

// Channel is a byte-oriented serial link to the device.
//
// Implementations:
//   - serial.Port wraps a real UART
//   - serialtest.Channel is a scripted fake for unit tests
//   - simulator.Device emulates the WS63 boot ROM
type Channel interface {
	// Read reads up to len(p) bytes, waiting at most timeout for the
	// first one. A timeout with nothing read returns 0, nil.
	Read(p []byte, timeout time.Duration) (int, error)

	// Write writes p and returns the number of bytes accepted.
	Write(p []byte) (int, error)

	// SetBaudRate reconfigures the line speed.
	SetBaudRate(baud int) error
}
