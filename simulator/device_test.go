package simulator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/moffa90/go-ws63flash/protocol"
	"github.com/moffa90/go-ws63flash/ymodem"
)

func readAll(d *Device) []byte {
	var out []byte
	buf := make([]byte, 64)
	for {
		n, _ := d.Read(buf, time.Millisecond)
		if n == 0 || (n == 1 && buf[0] == ymodem.CRCRequest) {
			return out
		}
		out = append(out, buf[:n]...)
	}
}

func fastSender(d *Device) *ymodem.Sender {
	return ymodem.NewSender(d, ymodem.WithConfig(ymodem.Config{
		StartTimeout: time.Second,
		AckTimeout:   50 * time.Millisecond,
		BlockTimeout: time.Second,
	}))
}

func TestDeviceHandshake(t *testing.T) {
	d := New(IgnoreHandshakes(1))

	if _, err := d.Write(protocol.BuildHandshakeCmd(protocol.DefaultBaudRate)); err != nil {
		t.Fatal(err)
	}
	if got := readAll(d); len(got) != 0 {
		t.Errorf("ignored handshake answered with % X", got)
	}

	_, _ = d.Write(protocol.BuildHandshakeCmd(protocol.DefaultBaudRate))
	if got := readAll(d); !bytes.Contains(got, protocol.HandshakeAck) {
		t.Errorf("reply = % X, want handshake ack", got)
	}
	if d.Handshakes() != 2 {
		t.Errorf("Handshakes() = %d, want 2", d.Handshakes())
	}

	// Waiting for a YMODEM header now.
	buf := make([]byte, 1)
	if n, _ := d.Read(buf, time.Millisecond); n != 1 || buf[0] != ymodem.CRCRequest {
		t.Errorf("Read() = %q, want 'C'", buf[:n])
	}
}

func TestDeviceSession(t *testing.T) {
	d := New(NakBlocks(1))
	_, _ = d.Write(protocol.BuildHandshakeCmd(protocol.DefaultBaudRate))
	readAll(d)

	data := bytes.Repeat([]byte{0x42}, 1500)
	if err := fastSender(d).Send(context.Background(), "lb.bin", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	sessions := d.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	s := sessions[0]
	if s.Name != "lb.bin" || s.Size != 1500 || s.Blocks != 2 || !bytes.Equal(s.Data, data) {
		t.Errorf("session = %s size %d blocks %d", s.Name, s.Size, s.Blocks)
	}

	// The loaderboot announces itself with a frame.
	frame, err := protocol.ScanForResponse(d, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("ScanForResponse() error = %v", err)
	}
	if frame.Command != protocol.CmdHandshakeAck {
		t.Errorf("announce command = 0x%02X", frame.Command)
	}
}

func TestDeviceCommands(t *testing.T) {
	d := New()
	_, _ = d.Write(protocol.BuildHandshakeCmd(protocol.DefaultBaudRate))
	readAll(d)
	_ = fastSender(d).Send(context.Background(), "lb.bin", bytes.NewReader([]byte{1}), 1)
	readAll(d)

	// set baud: reply, then a second reply once the host follows
	_, _ = d.Write(protocol.BuildSetBaudRateCmd(921600))
	if got := readAll(d); !bytes.Contains(got, protocol.HandshakeAck) {
		t.Errorf("set-baud reply = % X", got)
	}
	_ = d.SetBaudRate(921600)
	if got := readAll(d); !bytes.Contains(got, protocol.HandshakeAck) {
		t.Errorf("no reply at new speed: % X", got)
	}

	// erase: reply only, no YMODEM receive
	_, _ = d.Write(protocol.BuildEraseCmd())
	readAll(d)
	buf := make([]byte, 1)
	if n, _ := d.Read(buf, time.Millisecond); n != 0 {
		t.Errorf("erase started a transfer: %q", buf[:n])
	}

	// download: reply, then 'C'
	_, _ = d.Write(protocol.BuildDownloadCmd(0x230000, 10, protocol.EraseSize(10)))
	readAll(d)
	if err := fastSender(d).Send(context.Background(), "app.bin", bytes.NewReader(make([]byte, 10)), 10); err != nil {
		t.Fatalf("Send(app) error = %v", err)
	}
	if s := d.Sessions(); len(s) != 2 || s[1].Address != 0x230000 {
		t.Errorf("sessions = %+v", s)
	}

	_, _ = d.Write(protocol.BuildResetCmd())
	if got := readAll(d); !bytes.Contains(got, []byte("Reset")) {
		t.Errorf("reset reply = %q", got)
	}

	if n := len(d.FramesByCommand(protocol.CmdDownload)); n != 2 {
		t.Errorf("recorded %d download frames, want 2", n)
	}
	if got := d.BaudRates(); len(got) != 1 || got[0] != 921600 {
		t.Errorf("BaudRates() = %v", got)
	}
}

func TestDeviceMute(t *testing.T) {
	d := New(Mute())
	_, _ = d.Write(protocol.BuildHandshakeCmd(protocol.DefaultBaudRate))
	if got := readAll(d); len(got) != 0 {
		t.Errorf("muted device answered % X", got)
	}
	if len(d.Frames()) != 0 {
		t.Error("muted device recorded frames")
	}
}
