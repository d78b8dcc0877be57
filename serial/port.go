package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/moffa90/go-ws63flash/protocol"
)

// Port is a serial device implementing protocol.Channel.
type Port struct {
	port        serial.Port
	probe       *lineProbe
	path        string
	baud        int
	readTimeout time.Duration
}

var _ protocol.Channel = (*Port)(nil)

// Open opens path at DefaultBaudRate, 8 data bits, no parity, one stop bit.
func Open(path string) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	probe, err := openLineProbe(path)
	if err != nil {
		return nil, err
	}

	sp, err := serial.Open(path, mode)
	if err != nil {
		_ = probe.Close()
		return nil, protocol.NewError(protocol.KindIO, "open "+path, err)
	}

	// Drop whatever the device printed before we attached.
	_ = sp.ResetInputBuffer()

	return &Port{port: sp, probe: probe, path: path, baud: DefaultBaudRate}, nil
}

// Path returns the device path the port was opened with.
func (p *Port) Path() string {
	return p.path
}

// BaudRate returns the current line speed.
func (p *Port) BaudRate() int {
	return p.baud
}

// Read waits up to timeout for data. It returns 0, nil when nothing arrived.
func (p *Port) Read(buf []byte, timeout time.Duration) (int, error) {
	if timeout != p.readTimeout {
		if err := p.port.SetReadTimeout(timeout); err != nil {
			return 0, protocol.NewError(protocol.KindIO, "set read timeout", err)
		}
		p.readTimeout = timeout
	}

	n, err := p.port.Read(buf)
	if err != nil {
		return n, protocol.NewError(protocol.KindIO, "read "+p.path, err)
	}
	return n, nil
}

// Write writes buf and waits for it to leave the transmit queue.
func (p *Port) Write(buf []byte) (int, error) {
	n, err := p.port.Write(buf)
	if err != nil {
		return n, protocol.NewError(protocol.KindIO, "write "+p.path, err)
	}
	if err := p.port.Drain(); err != nil {
		return n, protocol.NewError(protocol.KindIO, "drain "+p.path, err)
	}
	return n, nil
}

// SetBaudRate reconfigures the line speed, keeping 8N1. On Linux the
// speed is read back from the driver afterwards.
func (p *Port) SetBaudRate(baud int) error {
	if err := ValidateBaudRate(baud); err != nil {
		return err
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if err := p.port.SetMode(mode); err != nil {
		return protocol.NewError(protocol.KindIO, fmt.Sprintf("set baud rate %d", baud), err)
	}
	p.baud = baud

	return p.probe.check(baud)
}

// Close closes the device.
func (p *Port) Close() error {
	err := p.port.Close()
	if perr := p.probe.Close(); err == nil {
		err = perr
	}
	return err
}

// ListPorts returns the serial devices present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, protocol.NewError(protocol.KindIO, "list ports", err)
	}
	return ports, nil
}
