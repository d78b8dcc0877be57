package flasher

import "time"

// Operation phases reported through Progress.
const (
	PhaseHandshake  = "handshake"
	PhaseLoaderBoot = "loaderboot"
	PhaseBaud       = "baud"
	PhaseErase      = "erase"
	PhaseTransfer   = "transfer"
	PhaseReset      = "reset"
	PhaseComplete   = "complete"
)

// Progress contains information about the flashing progress.
// Passed to ProgressCallback during an operation.
type Progress struct {
	// Phase describes the current stage:
	//   "handshake"  - waiting for the boot ROM to answer
	//   "loaderboot" - sending the loaderboot over YMODEM
	//   "baud"       - switching to the requested speed
	//   "erase"      - erasing the whole flash
	//   "transfer"   - sending a partition over YMODEM
	//   "reset"      - polling the device into a reset
	//   "complete"   - operation completed successfully
	Phase string

	// Target is the name of the image being sent, if any
	Target string

	// Block is the last acknowledged YMODEM data block (1-based)
	Block int

	// TotalBlocks is the number of data blocks of Target
	TotalBlocks int

	// BytesSent is the number of bytes of Target acknowledged so far
	BytesSent int64

	// TotalBytes is the size of Target
	TotalBytes int64

	// Percentage is the completion of the whole operation (0.0 to 100.0)
	Percentage float64

	// Elapsed is the time since the operation started
	Elapsed time.Duration
}

// ProgressCallback is called during an operation to report progress.
// Implementations should return quickly; the serial line is not serviced
// while the callback runs.
//
// Example:
//
//	f := flasher.New(port,
//	    flasher.WithProgressCallback(func(p flasher.Progress) {
//	        fmt.Printf("[%s] %s %d/%d\n", p.Phase, p.Target, p.Block, p.TotalBlocks)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the
// flasher. This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	f := flasher.New(port, flasher.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// FrameTracer receives every command frame before it is written.
type FrameTracer func(frame []byte)
