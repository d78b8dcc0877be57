package protocol

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures across the protocol stack.
type ErrorKind int

const (
	// KindIO is a failed or short read/write on the channel
	KindIO ErrorKind = iota + 1

	// KindTimeout is a wait that ran past its deadline
	KindTimeout

	// KindChecksum is a CRC mismatch on a frame or container header
	KindChecksum

	// KindFormat is a structurally invalid frame, container or argument
	KindFormat

	// KindNak is a negative acknowledgement from the device
	KindNak

	// KindUnsupportedBaud is a speed the platform cannot configure
	KindUnsupportedBaud
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "i/o error"
	case KindTimeout:
		return "timeout"
	case KindChecksum:
		return "checksum mismatch"
	case KindFormat:
		return "invalid format"
	case KindNak:
		return "negative acknowledgement"
	case KindUnsupportedBaud:
		return "unsupported baud rate"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is the error type returned by the protocol, ymodem, fwpkg and
// serial packages.
type Error struct {
	// Kind classifies the failure
	Kind ErrorKind

	// Op names the operation that failed, e.g. "scan for magic"
	Op string

	// Err is the underlying cause, if any
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. A target with
// an empty Op and nil Err, such as ErrTimeout, matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op == "" && t.Err == nil {
		return e.Kind == t.Kind
	}
	return e == t
}

// Sentinels for use with errors.Is.
var (
	ErrIO              = &Error{Kind: KindIO}
	ErrTimeout         = &Error{Kind: KindTimeout}
	ErrChecksum        = &Error{Kind: KindChecksum}
	ErrFormat          = &Error{Kind: KindFormat}
	ErrNak             = &Error{Kind: KindNak}
	ErrUnsupportedBaud = &Error{Kind: KindUnsupportedBaud}
)

// NewError returns an *Error of the given kind.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf returns an *Error of the given kind whose cause is a formatted message.
func Errorf(kind ErrorKind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsTimeout returns true if err is a KindTimeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsChecksum returns true if err is a KindChecksum error.
func IsChecksum(err error) bool {
	return errors.Is(err, ErrChecksum)
}
