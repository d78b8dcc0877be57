package flasher

import (
	"io"
	"time"

	"github.com/moffa90/go-ws63flash/protocol"
	"github.com/moffa90/go-ws63flash/ymodem"
)

// Config holds the flasher configuration.
type Config struct {
	// BaudRate is the speed used after the handshake (default 115200)
	BaudRate int

	// LateBaud defers the speed change until the loaderboot runs
	LateBaud bool

	// ProgressCallback is called to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Echo receives printable device output seen while waiting (optional)
	Echo io.Writer

	// FrameTrace receives every command frame sent (optional)
	FrameTrace FrameTracer

	// HandshakeTimeout bounds the wait for the boot ROM
	HandshakeTimeout time.Duration

	// ResetTimeout bounds the reset polling loop
	ResetTimeout time.Duration

	// MagicTimeout is the inactivity window when waiting for a reply frame
	MagicTimeout time.Duration

	// ReplyTimeout bounds a whole reply wait, including corrupt frames
	ReplyTimeout time.Duration

	// SettleDelay is the pause after each partition transfer
	SettleDelay time.Duration

	// PollInterval is the read timeout of the handshake and reset loops
	PollInterval time.Duration

	// YModem is the YMODEM timing
	YModem ymodem.Config
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		BaudRate:         protocol.DefaultBaudRate,
		HandshakeTimeout: 10 * time.Second,
		ResetTimeout:     10 * time.Second,
		MagicTimeout:     protocol.ScanTimeout,
		ReplyTimeout:     10 * time.Second,
		SettleDelay:      100 * time.Millisecond, // loader drops frames sent right after a transfer
		PollInterval:     100 * time.Millisecond,
		YModem:           ymodem.DefaultConfig(),
	}
}

// Option is a functional option for configuring the Flasher.
type Option func(*Config)

// WithBaudRate sets the speed to transfer partitions at.
//
// Example:
//
//	f := flasher.New(port, flasher.WithBaudRate(921600))
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}

// WithLateBaud defers the speed change until after the loaderboot has
// started, using a set-baud frame instead of the handshake payload.
//
// Example:
//
//	f := flasher.New(port, flasher.WithBaudRate(921600), flasher.WithLateBaud(true))
func WithLateBaud(late bool) Option {
	return func(c *Config) {
		c.LateBaud = late
	}
}

// WithProgressCallback sets a callback function to track progress.
//
// Example:
//
//	f := flasher.New(port,
//	    flasher.WithProgressCallback(func(p flasher.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the flasher operations.
//
// Example:
//
//	f := flasher.New(port, flasher.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithEcho copies boot chatter to w.
//
// Example:
//
//	f := flasher.New(port, flasher.WithEcho(os.Stderr))
func WithEcho(w io.Writer) Option {
	return func(c *Config) {
		c.Echo = w
	}
}

// WithFrameTrace sets a hook that sees every command frame sent.
func WithFrameTrace(trace FrameTracer) Option {
	return func(c *Config) {
		c.FrameTrace = trace
	}
}

// WithHandshakeTimeout sets how long to wait for the boot ROM.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HandshakeTimeout = timeout
	}
}

// WithResetTimeout sets how long to poll for the reset confirmation.
func WithResetTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ResetTimeout = timeout
	}
}

// WithMagicTimeout sets the inactivity window for reply frames.
func WithMagicTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.MagicTimeout = timeout
	}
}

// WithReplyTimeout sets how long a reply wait may keep skipping corrupt
// frames.
func WithReplyTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ReplyTimeout = timeout
	}
}

// WithSettleDelay sets the pause after each partition transfer.
func WithSettleDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.SettleDelay = delay
		}
	}
}

// WithPollInterval sets the read timeout of the polling loops.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.PollInterval = interval
		}
	}
}

// WithYModem sets the YMODEM timing.
//
// Example:
//
//	cfg := ymodem.DefaultConfig()
//	cfg.BlockTimeout = 30 * time.Second
//	f := flasher.New(port, flasher.WithYModem(cfg))
func WithYModem(cfg ymodem.Config) Option {
	return func(c *Config) {
		c.YModem = cfg
	}
}
