// Package serialtest provides a scripted protocol.Channel for unit tests.
package serialtest

import (
	"bytes"
	"sync"
	"time"

	"github.com/moffa90/go-ws63flash/protocol"
)

// Responder is called with every buffer written to a Channel and returns
// bytes to queue for reading.
type Responder func(written []byte) []byte

// Channel is an in-memory protocol.Channel. Reads drain a queue filled by
// Queue or by the Responder; writes are recorded.
type Channel struct {
	mu sync.Mutex

	rx      bytes.Buffer
	tx      bytes.Buffer
	writes  [][]byte
	bauds   []int
	respond Responder

	// MaxIdle caps how long an empty Read sleeps before reporting a
	// timeout. Zero reports immediately.
	MaxIdle time.Duration

	// ReadErr and WriteErr, when set, are returned by every Read/Write.
	ReadErr  error
	WriteErr error

	// BaudErr, when set, is returned by SetBaudRate.
	BaudErr error
}

var _ protocol.Channel = (*Channel)(nil)

// New returns an empty Channel that sleeps at most 1ms on an empty read.
func New() *Channel {
	return &Channel{MaxIdle: time.Millisecond}
}

// OnWrite installs fn as the Responder.
func (c *Channel) OnWrite(fn Responder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.respond = fn
}

// Queue appends data to the read queue.
func (c *Channel) Queue(data ...[]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range data {
		c.rx.Write(d)
	}
}

// Read implements protocol.Channel.
func (c *Channel) Read(p []byte, timeout time.Duration) (int, error) {
	c.mu.Lock()
	if c.ReadErr != nil {
		c.mu.Unlock()
		return 0, c.ReadErr
	}
	if c.rx.Len() > 0 {
		n, _ := c.rx.Read(p)
		c.mu.Unlock()
		return n, nil
	}
	idle := c.MaxIdle
	c.mu.Unlock()

	if idle > timeout {
		idle = timeout
	}
	if idle > 0 {
		time.Sleep(idle)
	}
	return 0, nil
}

// Write implements protocol.Channel.
func (c *Channel) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.WriteErr != nil {
		return 0, c.WriteErr
	}
	buf := append([]byte(nil), p...)
	c.writes = append(c.writes, buf)
	c.tx.Write(buf)
	if c.respond != nil {
		c.rx.Write(c.respond(buf))
	}
	return len(p), nil
}

// SetBaudRate implements protocol.Channel.
func (c *Channel) SetBaudRate(baud int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.BaudErr != nil {
		return c.BaudErr
	}
	c.bauds = append(c.bauds, baud)
	return nil
}

// Written returns every byte written so far.
func (c *Channel) Written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.tx.Bytes()...)
}

// Writes returns each Write call's buffer in order.
func (c *Channel) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

// BaudRates returns the arguments of every successful SetBaudRate call.
func (c *Channel) BaudRates() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.bauds...)
}

// Pending returns the number of queued bytes not yet read.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rx.Len()
}
