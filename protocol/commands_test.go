package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"
)

// fakeChannel is a minimal Channel for tests inside this package.
type fakeChannel struct {
	rx       []byte
	tx       bytes.Buffer
	maxWrite int
	zeroes   int
	writeErr error
	baud     int
}

func (c *fakeChannel) Read(p []byte, timeout time.Duration) (int, error) {
	if len(c.rx) == 0 {
		return 0, nil
	}
	n := copy(p, c.rx)
	c.rx = c.rx[n:]
	return n, nil
}

func (c *fakeChannel) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	if c.zeroes > 0 {
		c.zeroes--
		return 0, nil
	}
	if c.maxWrite > 0 && len(p) > c.maxWrite {
		p = p[:c.maxWrite]
	}
	return c.tx.Write(p)
}

func (c *fakeChannel) SetBaudRate(baud int) error {
	c.baud = baud
	return nil
}

func TestSwapNibbles(t *testing.T) {
	tests := []struct {
		in, want byte
	}{
		{0xF0, 0x0F},
		{0x5A, 0xA5},
		{0xD2, 0x2D},
		{0x87, 0x78},
		{0xE1, 0x1E},
		{0x00, 0x00},
	}

	for _, tt := range tests {
		if got := SwapNibbles(tt.in); got != tt.want {
			t.Errorf("SwapNibbles(0x%02X) = 0x%02X, want 0x%02X", tt.in, got, tt.want)
		}
	}
}

func TestEncode(t *testing.T) {
	frame, err := Encode(0x12, []byte{0xAA, 0xBB})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := []byte{0xEF, 0xBE, 0xAD, 0xDE, 0x0C, 0x00, 0x12, 0x21, 0xAA, 0xBB}
	if !bytes.Equal(frame[:10], want) {
		t.Errorf("Encode() header = % X, want % X", frame[:10], want)
	}
	if len(frame) != 12 {
		t.Fatalf("Encode() length = %d, want 12", len(frame))
	}
	crc := binary.LittleEndian.Uint16(frame[10:])
	if crc != CRC16(frame[:10]) {
		t.Errorf("Encode() crc = 0x%04X, want 0x%04X", crc, CRC16(frame[:10]))
	}
}

func TestEncodePayloadTooLarge(t *testing.T) {
	_, err := Encode(0x01, make([]byte, MaxPayloadSize+1))
	if err == nil {
		t.Fatal("Encode() expected error for oversized payload")
	}
	if KindOf(err) != KindFormat {
		t.Errorf("Encode() error kind = %v, want %v", KindOf(err), KindFormat)
	}

	frame, err := Encode(0x01, make([]byte, MaxPayloadSize))
	if err != nil {
		t.Fatalf("Encode() unexpected error at maximum payload: %v", err)
	}
	if len(frame) != MaxFrameSize {
		t.Errorf("Encode() length = %d, want %d", len(frame), MaxFrameSize)
	}
}

func TestHandshakeAckSignature(t *testing.T) {
	frame, err := Encode(CmdHandshakeAck, []byte{0x5A, 0x00})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.HasPrefix(frame, HandshakeAck) {
		t.Errorf("ack frame % X does not start with signature % X", frame, HandshakeAck)
	}
}

func TestBuildHandshakeCmd(t *testing.T) {
	frame := BuildHandshakeCmd(DefaultBaudRate)

	want := []byte{
		0xEF, 0xBE, 0xAD, 0xDE, 0x12, 0x00, 0xF0, 0x0F,
		0x00, 0xC2, 0x01, 0x00, // 115200
		0x08, 0x01, 0x00, 0x00, // 0x0108
	}
	if !bytes.Equal(frame[:len(want)], want) {
		t.Errorf("BuildHandshakeCmd() = % X, want prefix % X", frame, want)
	}
	if len(frame) != 18 {
		t.Errorf("BuildHandshakeCmd() length = %d, want 18", len(frame))
	}
}

func TestBuildSetBaudRateCmd(t *testing.T) {
	frame := BuildSetBaudRateCmd(921600)

	f, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.Command != CmdSetBaudRate {
		t.Errorf("Command = 0x%02X, want 0x%02X", f.Command, CmdSetBaudRate)
	}
	baud, err := ParseBaudPayload(f.Payload)
	if err != nil {
		t.Fatalf("ParseBaudPayload() error = %v", err)
	}
	if baud != 921600 {
		t.Errorf("baud = %d, want 921600", baud)
	}
}

func TestBuildDownloadCmd(t *testing.T) {
	frame := BuildDownloadCmd(0x1000, 8192, EraseSize(8192))

	if len(frame) != FrameOverhead+14 {
		t.Fatalf("BuildDownloadCmd() length = %d, want %d", len(frame), FrameOverhead+14)
	}

	payload := frame[payloadOffset : len(frame)-2]
	want := []byte{
		0x00, 0x10, 0x00, 0x00,
		0x00, 0x20, 0x00, 0x00,
		0x00, 0x20, 0x00, 0x00,
		0x00, 0xFF,
	}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload = % X, want % X", payload, want)
	}
}

func TestBuildEraseCmd(t *testing.T) {
	f, err := Decode(BuildEraseCmd())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []byte{
		0xAA, 0xAA, 0xAA, 0xAA,
		0xBB, 0xBB, 0xBB, 0xBB,
		0xCC, 0xCC, 0xCC, 0xCC,
		0x00, 0xFF,
	}
	if !bytes.Equal(f.Payload, want) {
		t.Errorf("payload = % X, want % X", f.Payload, want)
	}
	if !IsEraseCmd(f) {
		t.Error("IsEraseCmd() = false, want true")
	}

	dl, _ := Decode(BuildDownloadCmd(0, 1, 0x2000))
	if IsEraseCmd(dl) {
		t.Error("IsEraseCmd() = true for an ordinary download")
	}
}

func TestBuildResetCmd(t *testing.T) {
	frame := BuildResetCmd()

	want := []byte{0xEF, 0xBE, 0xAD, 0xDE, 0x0C, 0x00, 0x87, 0x78, 0x00, 0x00}
	if !bytes.Equal(frame[:10], want) {
		t.Errorf("BuildResetCmd() = % X, want prefix % X", frame, want)
	}
}

func TestEraseSize(t *testing.T) {
	tests := []struct {
		length uint32
		want   uint32
	}{
		{0, 0},
		{1, 0x2000},
		{4096, 0x2000},
		{8192, 0x2000},
		{8193, 0x4000},
		{0x100000, 0x100000},
		{0xFFFFFFFF, 0x00000000}, // wraps like the 32-bit field it fills
	}

	for _, tt := range tests {
		if got := EraseSize(tt.length); got != tt.want {
			t.Errorf("EraseSize(%d) = 0x%X, want 0x%X", tt.length, got, tt.want)
		}
	}
}

func TestSend(t *testing.T) {
	frame := BuildHandshakeCmd(DefaultBaudRate)

	t.Run("partial writes", func(t *testing.T) {
		ch := &fakeChannel{maxWrite: 5}
		if err := Send(ch, frame); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if !bytes.Equal(ch.tx.Bytes(), frame) {
			t.Errorf("wrote % X, want % X", ch.tx.Bytes(), frame)
		}
	})

	t.Run("transient zero writes", func(t *testing.T) {
		ch := &fakeChannel{zeroes: maxZeroWrites - 1}
		if err := Send(ch, frame); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	})

	t.Run("stalled channel", func(t *testing.T) {
		ch := &fakeChannel{zeroes: 100}
		err := Send(ch, frame)
		if !errors.Is(err, io.ErrShortWrite) {
			t.Errorf("Send() error = %v, want io.ErrShortWrite", err)
		}
		if KindOf(err) != KindIO {
			t.Errorf("Send() kind = %v, want %v", KindOf(err), KindIO)
		}
	})

	t.Run("write error", func(t *testing.T) {
		ch := &fakeChannel{writeErr: io.ErrClosedPipe}
		err := Send(ch, frame)
		if !errors.Is(err, ErrIO) {
			t.Errorf("Send() error = %v, want ErrIO", err)
		}
	})
}

func BenchmarkEncode(b *testing.B) {
	payload := make([]byte, MaxPayloadSize)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Encode(CmdDownload, payload)
	}
}
