package serialtest

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestChannel(t *testing.T) {
	ch := New()
	ch.OnWrite(func(p []byte) []byte {
		return bytes.ToUpper(p)
	})

	if _, err := ch.Write([]byte("ping")); err != nil {
		t.Fatal(err)
	}
	ch.Queue([]byte("!"))

	buf := make([]byte, 3)
	n, _ := ch.Read(buf, time.Second)
	if string(buf[:n]) != "PIN" {
		t.Errorf("first read = %q", buf[:n])
	}
	n, _ = ch.Read(buf, time.Second)
	if string(buf[:n]) != "G!" {
		t.Errorf("second read = %q", buf[:n])
	}
	if ch.Pending() != 0 {
		t.Errorf("Pending() = %d", ch.Pending())
	}

	if string(ch.Written()) != "ping" || len(ch.Writes()) != 1 {
		t.Errorf("Written() = %q, Writes() = %d", ch.Written(), len(ch.Writes()))
	}
}

func TestChannelEmptyRead(t *testing.T) {
	ch := New()
	ch.MaxIdle = time.Hour

	start := time.Now()
	n, err := ch.Read(make([]byte, 1), 10*time.Millisecond)
	if n != 0 || err != nil {
		t.Errorf("Read() = %d, %v, want 0, nil", n, err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("empty read blocked for %v", elapsed)
	}
}

func TestChannelErrors(t *testing.T) {
	boom := errors.New("boom")
	ch := New()
	ch.ReadErr = boom
	ch.WriteErr = boom
	ch.BaudErr = boom

	if _, err := ch.Read(make([]byte, 1), time.Millisecond); !errors.Is(err, boom) {
		t.Errorf("Read() error = %v", err)
	}
	if _, err := ch.Write([]byte{1}); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v", err)
	}
	if err := ch.SetBaudRate(921600); !errors.Is(err, boom) {
		t.Errorf("SetBaudRate() error = %v", err)
	}
	if len(ch.BaudRates()) != 0 || len(ch.Writes()) != 0 {
		t.Error("failed calls were recorded")
	}

	ch.BaudErr = nil
	_ = ch.SetBaudRate(921600)
	if got := ch.BaudRates(); len(got) != 1 || got[0] != 921600 {
		t.Errorf("BaudRates() = %v", got)
	}
}
