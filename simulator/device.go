// Package simulator emulates the WS63 boot ROM and loaderboot on the far
// side of a protocol.Channel.
//
// The Device answers handshakes, receives YMODEM sessions, acknowledges
// download, set-baud and reset frames, and records everything the host
// sent so tests can assert on the exact exchange:
//
//	dev := simulator.New()
//	f := flasher.New(dev)
//	err := f.Flash(ctx, img, nil)
//	sessions := dev.Sessions()
package simulator

import (
	"bytes"
	"sync"
	"time"

	"github.com/moffa90/go-ws63flash/protocol"
	"github.com/moffa90/go-ws63flash/ymodem"
)

type mode int

const (
	modeROM mode = iota
	modeReceive
	modeCommand
)

type sessionState int

const (
	awaitHeader sessionState = iota
	awaitData
	awaitClosing
)

// Session is one YMODEM file received by the device.
type Session struct {
	// Name and Size are taken from the header block
	Name string
	Size int64

	// Address is the burn address of the download frame that opened the
	// session; zero for the loaderboot
	Address uint32

	// Blocks is the number of distinct data blocks received
	Blocks int

	// Data is the received file, trimmed to Size
	Data []byte
}

// Option configures a Device.
type Option func(*Device)

// IgnoreHandshakes makes the ROM ignore the first n handshake frames.
func IgnoreHandshakes(n int) Option {
	return func(d *Device) {
		d.ignoreHandshakes = n
	}
}

// NakBlocks makes the device NAK the first n data blocks it receives.
func NakBlocks(n int) Option {
	return func(d *Device) {
		d.nakBlocks = n
	}
}

// CorruptFrames makes the device send a corrupted copy ahead of its first
// n reply frames.
func CorruptFrames(n int) Option {
	return func(d *Device) {
		d.corruptFrames = n
	}
}

// Mute makes the device ignore everything the host writes.
func Mute() Option {
	return func(d *Device) {
		d.mute = true
	}
}

// Device is a simulated WS63. It implements protocol.Channel.
type Device struct {
	mu sync.Mutex

	mode    mode
	state   sessionState
	scanner *protocol.Scanner
	rx      bytes.Buffer
	ybuf    []byte

	current     *Session
	nextAddress uint32
	pendingBaud int

	frames     []*protocol.Frame
	sessions   []Session
	bauds      []int
	handshakes int

	ignoreHandshakes int
	nakBlocks        int
	corruptFrames    int
	mute             bool
}

var _ protocol.Channel = (*Device)(nil)

// New returns a Device waiting for a handshake.
func New(opts ...Option) *Device {
	d := &Device{scanner: protocol.NewScanner()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Read implements protocol.Channel. While a YMODEM receive is waiting for
// its header the device keeps requesting CRC mode with 'C'.
func (d *Device) Read(p []byte, timeout time.Duration) (int, error) {
	d.mu.Lock()
	if d.rx.Len() > 0 {
		n, _ := d.rx.Read(p)
		d.mu.Unlock()
		return n, nil
	}
	if d.mode == modeReceive && d.state == awaitHeader && len(p) > 0 {
		p[0] = ymodem.CRCRequest
		d.mu.Unlock()
		return 1, nil
	}
	d.mu.Unlock()

	idle := time.Millisecond
	if timeout < idle {
		idle = timeout
	}
	if idle > 0 {
		time.Sleep(idle)
	}
	return 0, nil
}

// Write implements protocol.Channel.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mute {
		return len(p), nil
	}

	switch d.mode {
	case modeReceive:
		d.receive(p)
	default:
		for _, b := range p {
			done, err := d.scanner.Feed(b)
			if err == nil && done {
				d.handleFrame(d.scanner.Frame())
			}
		}
	}
	return len(p), nil
}

// SetBaudRate implements protocol.Channel. Switching to the speed a
// set-baud frame asked for makes the loaderboot announce itself again.
func (d *Device) SetBaudRate(baud int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.bauds = append(d.bauds, baud)
	if d.pendingBaud != 0 && baud == d.pendingBaud {
		d.pendingBaud = 0
		d.reply()
	}
	return nil
}

func (d *Device) handleFrame(f *protocol.Frame) {
	d.frames = append(d.frames, f)

	switch d.mode {
	case modeROM:
		if f.Command != protocol.CmdHandshake {
			return
		}
		d.handshakes++
		if d.ignoreHandshakes > 0 {
			d.ignoreHandshakes--
			return
		}
		d.reply()
		d.startReceive(0)

	case modeCommand:
		switch f.Command {
		case protocol.CmdSetBaudRate:
			if baud, err := protocol.ParseBaudPayload(f.Payload); err == nil {
				d.pendingBaud = int(baud)
			}
			d.reply()
		case protocol.CmdDownload:
			d.reply()
			if protocol.IsEraseCmd(f) {
				return
			}
			if req, err := protocol.ParseDownloadPayload(f.Payload); err == nil {
				d.startReceive(req.Address)
			}
		case protocol.CmdReset:
			d.reply()
			d.rx.WriteString("Reset device...\r\n")
		}
	}
}

// reply queues the loader's acknowledgement frame.
func (d *Device) reply() {
	frame, _ := protocol.Encode(protocol.CmdHandshakeAck, []byte{protocol.CmdSetBaudRate, 0x00})
	if d.corruptFrames > 0 {
		d.corruptFrames--
		bad := append([]byte(nil), frame...)
		bad[len(bad)-1] ^= 0xFF
		d.rx.Write(bad)
	}
	d.rx.Write(frame)
}

func (d *Device) startReceive(addr uint32) {
	d.mode = modeReceive
	d.state = awaitHeader
	d.nextAddress = addr
	d.ybuf = d.ybuf[:0]
}

func (d *Device) receive(p []byte) {
	d.ybuf = append(d.ybuf, p...)

	for len(d.ybuf) > 0 && d.mode == modeReceive {
		var size int
		switch d.ybuf[0] {
		case ymodem.EOT:
			d.ybuf = d.ybuf[1:]
			d.handleEOT()
			continue
		case ymodem.SOH:
			size = ymodem.HeaderBlockSize
		case ymodem.STX:
			size = ymodem.DataBlockSize
		default:
			d.ybuf = d.ybuf[1:]
			continue
		}
		if len(d.ybuf) < size {
			return
		}

		raw := d.ybuf[:size]
		d.ybuf = d.ybuf[size:]

		blk, err := ymodem.ParseBlock(raw)
		if err != nil {
			d.rx.WriteByte(ymodem.NAK)
			continue
		}
		d.handleBlock(blk)
	}
}

func (d *Device) handleBlock(blk *ymodem.Block) {
	switch {
	case blk.Type == ymodem.SOH && d.state == awaitHeader:
		name, size, err := ymodem.ParseHeader(blk.Payload)
		if err != nil || name == "" {
			d.rx.WriteByte(ymodem.NAK)
			return
		}
		d.current = &Session{Name: name, Size: size, Address: d.nextAddress}
		d.state = awaitData
		d.rx.WriteByte(ymodem.ACK)

	case blk.Type == ymodem.SOH && d.state == awaitData && d.current.Blocks == 0:
		// Header resent because our ACK was missed.
		d.rx.WriteByte(ymodem.ACK)

	case blk.Type == ymodem.STX && d.state == awaitData:
		if d.nakBlocks > 0 {
			d.nakBlocks--
			d.rx.WriteByte(ymodem.NAK)
			return
		}
		switch blk.Seq {
		case byte(d.current.Blocks + 1):
			d.current.Blocks++
			d.current.Data = append(d.current.Data, blk.Payload...)
			d.rx.WriteByte(ymodem.ACK)
		case byte(d.current.Blocks):
			d.rx.WriteByte(ymodem.ACK)
		default:
			d.rx.WriteByte(ymodem.NAK)
		}

	case blk.Type == ymodem.SOH && d.state == awaitClosing:
		if name, _, _ := ymodem.ParseHeader(blk.Payload); name != "" {
			d.rx.WriteByte(ymodem.NAK)
			return
		}
		d.finishSession()

	default:
		d.rx.WriteByte(ymodem.NAK)
	}
}

func (d *Device) handleEOT() {
	if d.state == awaitData || d.state == awaitClosing {
		d.state = awaitClosing
		d.rx.WriteByte(ymodem.ACK)
		return
	}
	d.rx.WriteByte(ymodem.NAK)
}

func (d *Device) finishSession() {
	s := *d.current
	if int64(len(s.Data)) > s.Size {
		s.Data = s.Data[:s.Size]
	}
	d.sessions = append(d.sessions, s)
	d.current = nil
	d.mode = modeCommand
	d.scanner.Reset()

	// The first session is the loaderboot, which boots and announces itself.
	if len(d.sessions) == 1 {
		d.rx.WriteString("ws63 loaderboot\r\n")
		d.reply()
	}
}

// Frames returns every command frame the device decoded.
func (d *Device) Frames() []*protocol.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*protocol.Frame(nil), d.frames...)
}

// FramesByCommand returns the decoded frames carrying cmd.
func (d *Device) FramesByCommand(cmd byte) []*protocol.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*protocol.Frame
	for _, f := range d.frames {
		if f.Command == cmd {
			out = append(out, f)
		}
	}
	return out
}

// Sessions returns the completed YMODEM sessions in order.
func (d *Device) Sessions() []Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Session(nil), d.sessions...)
}

// BaudRates returns every speed the host configured.
func (d *Device) BaudRates() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.bauds...)
}

// Handshakes returns the number of handshake frames the ROM decoded.
func (d *Device) Handshakes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handshakes
}
