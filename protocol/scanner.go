package protocol

import (
	"encoding/binary"
	"io"
	"time"
)

// ScanTimeout is the default inactivity window of ScanForResponse.
const ScanTimeout = 2 * time.Second

// ScanState is the state of a Scanner.
type ScanState int

const (
	// ScanSeekMagic matches incoming bytes against the frame magic
	ScanSeekMagic ScanState = iota

	// ScanReadBody accumulates length, command, payload and CRC
	ScanReadBody

	// ScanValidated holds a frame whose CRC matched
	ScanValidated
)

func (s ScanState) String() string {
	switch s {
	case ScanSeekMagic:
		return "seek-magic"
	case ScanReadBody:
		return "read-body"
	case ScanValidated:
		return "validated"
	default:
		return "unknown"
	}
}

// Scanner finds command frames in an unstructured byte stream.
//
// Bytes are pushed one at a time with Feed. Bytes that do not start a
// frame are dropped, so boot chatter and partial frames can precede the
// response. A CRC failure is reported once and the scanner goes back to
// seeking, so the caller may keep feeding.
type Scanner struct {
	state   ScanState
	matched int
	total   int
	buf     []byte
	frame   *Frame
}

// NewScanner returns a Scanner seeking the frame magic.
func NewScanner() *Scanner {
	return &Scanner{buf: make([]byte, 0, MaxFrameSize)}
}

// State returns the current state.
func (s *Scanner) State() ScanState {
	return s.state
}

// Frame returns the validated frame, or nil if none has been completed
// since the last Reset.
func (s *Scanner) Frame() *Frame {
	return s.frame
}

// Reset discards any partial frame and returns to ScanSeekMagic.
func (s *Scanner) Reset() {
	s.state = ScanSeekMagic
	s.matched = 0
	s.total = 0
	s.buf = s.buf[:0]
	s.frame = nil
}

// Feed advances the state machine by one byte. It returns true once a
// frame has been validated; Frame then returns it. A KindChecksum error
// means a complete but corrupt frame was dropped.
func (s *Scanner) Feed(b byte) (done bool, err error) {
	switch s.state {
	case ScanSeekMagic:
		s.seekMagic(b)
		return false, nil
	case ScanReadBody:
		return s.readBody(b)
	default:
		// A validated frame is consumed; start over.
		s.Reset()
		s.seekMagic(b)
		return false, nil
	}
}

func (s *Scanner) seekMagic(b byte) {
	if b != magicBytes[s.matched] {
		s.matched = 0
		// The mismatching byte may itself begin the magic.
		if b != magicBytes[0] {
			return
		}
	}
	s.matched++
	if s.matched < MagicSize {
		return
	}

	s.buf = append(s.buf[:0], magicBytes[:]...)
	s.total = 0
	s.state = ScanReadBody
}

func (s *Scanner) readBody(b byte) (bool, error) {
	s.buf = append(s.buf, b)

	if len(s.buf) == lengthOffset+2 {
		s.total = int(binary.LittleEndian.Uint16(s.buf[lengthOffset:]))
		if s.total < FrameOverhead || s.total > MaxFrameSize {
			bad := s.total
			s.Reset()
			return false, Errorf(KindChecksum, "scan for magic", "implausible frame length %d", bad)
		}
	}

	if s.total == 0 || len(s.buf) < s.total {
		return false, nil
	}

	return s.validate()
}

func (s *Scanner) validate() (bool, error) {
	expected := binary.LittleEndian.Uint16(s.buf[s.total-2:])
	actual := CRC16(s.buf[:s.total-2])
	if expected != actual {
		s.Reset()
		return false, Errorf(KindChecksum, "scan for magic", "got 0x%04X, expected 0x%04X", actual, expected)
	}

	payload := make([]byte, s.total-FrameOverhead)
	copy(payload, s.buf[payloadOffset:s.total-2])
	s.frame = &Frame{Command: s.buf[commandOffset], Payload: payload, Checksum: expected}
	s.state = ScanValidated
	return true, nil
}

// ScanForResponse reads ch one byte at a time until a valid frame has been
// seen. The inactivity window is re-armed on every byte, so a slow but
// steady stream never times out; zero selects ScanTimeout.
//
// Printable bytes read while seeking are copied to echo when it is non-nil.
// A KindChecksum error leaves ch positioned after the corrupt frame and the
// caller may scan again.
func ScanForResponse(ch Channel, inactivity time.Duration, echo io.Writer) (*Frame, error) {
	if inactivity <= 0 {
		inactivity = ScanTimeout
	}

	s := NewScanner()
	var b [1]byte
	for {
		n, err := ch.Read(b[:], inactivity)
		if err != nil {
			return nil, NewError(KindIO, "scan for magic", err)
		}
		if n == 0 {
			return nil, Errorf(KindTimeout, "scan for magic", "no data for %v", inactivity)
		}

		seeking := s.State() == ScanSeekMagic
		done, err := s.Feed(b[0])
		if err != nil {
			return nil, err
		}
		if done {
			return s.Frame(), nil
		}
		if seeking && s.State() == ScanSeekMagic && echo != nil && IsPrintable(b[0]) {
			_, _ = echo.Write(b[:])
		}
	}
}

// IsPrintable reports whether b is printable ASCII or line whitespace.
func IsPrintable(b byte) bool {
	return (b >= 0x20 && b < 0x7F) || b == '\n' || b == '\r' || b == '\t'
}
