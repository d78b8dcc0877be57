package ymodem

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/moffa90/go-ws63flash/protocol"
)

// Default timing.
const (
	// DefaultStartTimeout bounds the wait for the receiver's 'C'
	DefaultStartTimeout = 5 * time.Second

	// DefaultAckTimeout bounds each wait for ACK/NAK after a block
	DefaultAckTimeout = 1500 * time.Millisecond

	// DefaultBlockTimeout is the wall-clock budget for retrying one block
	DefaultBlockTimeout = 10 * time.Second
)

// Config holds the timing of a transfer.
type Config struct {
	StartTimeout time.Duration
	AckTimeout   time.Duration
	BlockTimeout time.Duration
}

// DefaultConfig returns the timing the WS63 loader expects.
func DefaultConfig() Config {
	return Config{
		StartTimeout: DefaultStartTimeout,
		AckTimeout:   DefaultAckTimeout,
		BlockTimeout: DefaultBlockTimeout,
	}
}

// Logger is the logging interface used by Sender. It is satisfied by
// flasher.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// BlockFunc is called after each data block is acknowledged.
type BlockFunc func(name string, block, total int, bytesSent int64)

// Option configures a Sender.
type Option func(*Sender)

// WithConfig replaces the transfer timing.
func WithConfig(cfg Config) Option {
	return func(s *Sender) {
		s.config = cfg
	}
}

// WithEcho copies printable bytes received while waiting for 'C' to w.
func WithEcho(w io.Writer) Option {
	return func(s *Sender) {
		s.echo = w
	}
}

// WithLogger sets a logger for retries and stage changes.
func WithLogger(logger Logger) Option {
	return func(s *Sender) {
		s.logger = logger
	}
}

// WithBlockFunc sets a progress hook.
func WithBlockFunc(fn BlockFunc) Option {
	return func(s *Sender) {
		s.onBlock = fn
	}
}

// Sender transmits single files over YMODEM-1K with CRC-16.
type Sender struct {
	ch      protocol.Channel
	config  Config
	echo    io.Writer
	logger  Logger
	onBlock BlockFunc
}

// NewSender returns a Sender on ch.
func NewSender(ch protocol.Channel, opts ...Option) *Sender {
	if ch == nil {
		panic("ymodem: channel cannot be nil")
	}

	s := &Sender{ch: ch, config: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ackResult is the outcome of one wait for the receiver's reply.
type ackResult int

const (
	ackOK ackResult = iota
	ackNak
	ackTimedOut
)

func (r ackResult) String() string {
	switch r {
	case ackOK:
		return "ack"
	case ackNak:
		return "nak"
	default:
		return "timeout"
	}
}

// Send transfers size bytes from r as a single-file session named name.
//
// The session is:
//
//	wait 'C' -> header block -> data blocks 1..N -> EOT -> closing block
//
// Every block except the closing one is resent on NAK or silence until it
// is acknowledged or the block budget runs out. The closing block is
// written without waiting for a reply; the loader starts executing or
// writing flash as soon as it arrives.
func (s *Sender) Send(ctx context.Context, name string, r io.Reader, size int64) error {
	if size < 0 {
		return protocol.Errorf(protocol.KindFormat, "ymodem send", "negative size %d", size)
	}

	if err := s.awaitStart(ctx); err != nil {
		return err
	}
	s.logDebug("receiver ready", "file", name, "size", size)

	if err := s.transmit(ctx, HeaderBlock(name, size), "header"); err != nil {
		return err
	}

	total := BlockCount(size)
	buf := make([]byte, DataPayloadSize)
	var sent int64

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		want := int64(DataPayloadSize)
		if remaining := size - sent; remaining < want {
			want = remaining
		}

		n, err := io.ReadFull(r, buf[:want])
		if err != nil && !(i == total && errors.Is(err, io.ErrUnexpectedEOF)) {
			return protocol.NewError(protocol.KindIO, "read "+name, err)
		}

		if err := s.transmit(ctx, DataBlock(byte(i), buf[:n]), "data"); err != nil {
			return err
		}

		sent += int64(n)
		if s.onBlock != nil {
			s.onBlock(name, i, total, sent)
		}
	}

	if err := s.transmit(ctx, []byte{EOT}, "eot"); err != nil {
		return err
	}

	if err := protocol.Send(s.ch, ClosingBlock()); err != nil {
		return err
	}

	s.logDebug("transfer complete", "file", name, "blocks", total)
	return nil
}

// awaitStart reads single bytes until the receiver requests CRC mode.
func (s *Sender) awaitStart(ctx context.Context) error {
	deadline := time.Now().Add(s.config.StartTimeout)
	var b [1]byte

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return protocol.Errorf(protocol.KindTimeout, "await start", "no 'C' within %v", s.config.StartTimeout)
		}

		n, err := s.ch.Read(b[:], remaining)
		if err != nil {
			return protocol.NewError(protocol.KindIO, "await start", err)
		}
		if n == 0 {
			continue
		}
		if b[0] == CRCRequest {
			return nil
		}
		if s.echo != nil && protocol.IsPrintable(b[0]) {
			_, _ = s.echo.Write(b[:])
		}
	}
}

// transmit writes blk and retries until it is acknowledged. Exceeding the
// block budget fails the whole transfer.
func (s *Sender) transmit(ctx context.Context, blk []byte, what string) error {
	start := time.Now()
	attempts := 0
	last := ackTimedOut

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Since(start) > s.config.BlockTimeout {
			return protocol.Errorf(protocol.KindTimeout, "send "+what+" block",
				"not acknowledged after %d attempts in %v (last reply: %v)", attempts, s.config.BlockTimeout, last)
		}

		if err := protocol.Send(s.ch, blk); err != nil {
			return err
		}
		attempts++

		res, err := s.waitAck()
		if err != nil {
			return err
		}
		if res == ackOK {
			return nil
		}
		last = res
		s.logDebug("resending block", "block", what, "reason", res, "attempt", attempts)
	}
}

// waitAck waits up to AckTimeout for ACK or NAK. Other bytes are ignored.
func (s *Sender) waitAck() (ackResult, error) {
	deadline := time.Now().Add(s.config.AckTimeout)
	var b [1]byte

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ackTimedOut, nil
		}

		n, err := s.ch.Read(b[:], remaining)
		if err != nil {
			return ackTimedOut, protocol.NewError(protocol.KindIO, "wait ack", err)
		}
		if n == 0 {
			continue
		}

		switch b[0] {
		case ACK:
			return ackOK, nil
		case NAK:
			return ackNak, nil
		}
	}
}

func (s *Sender) logDebug(msg string, keysAndValues ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, keysAndValues...)
	}
}
