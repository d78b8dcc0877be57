package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/moffa90/go-ws63flash/flasher"
	"github.com/moffa90/go-ws63flash/fwpkg"
)

func TestPrintTable(t *testing.T) {
	fw := &fwpkg.Firmware{Partitions: []*fwpkg.Partition{
		{Name: "root_loaderboot_sign.bin", Length: 0x1000, Kind: fwpkg.KindLoaderBoot},
		{Name: "app.bin", Length: 0x2000, BurnAddress: 0x230000, Kind: fwpkg.KindNormal},
		{Name: "nv.bin", Length: 0x100, BurnAddress: 0x3F0000, Kind: fwpkg.KindNormal},
	}}

	var buf bytes.Buffer
	PrintTable(&buf, PartitionRows(fw, []string{"app.bin"}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		tableRule,
		"|F|BIN NAME                       |LENGTH    |BURN ADDR |T|",
		tableRule,
		"|!|root_loaderboot_sign.bin       |0x00001000|0x00000000|0|",
		"|*|app.bin                        |0x00002000|0x00230000|1|",
		"| |nv.bin                         |0x00000100|0x003f0000|1|",
		tableRule,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
		if len(lines[i]) != len(tableRule) {
			t.Errorf("line %d is %d wide, want %d", i, len(lines[i]), len(tableRule))
		}
	}
}

func TestPartitionRowsAllSelected(t *testing.T) {
	fw := &fwpkg.Firmware{Partitions: []*fwpkg.Partition{
		{Name: "lb", Kind: fwpkg.KindLoaderBoot},
		{Name: "a", Kind: fwpkg.KindNormal},
		{Name: "r", Kind: 5},
	}}

	rows := PartitionRows(fw, nil)
	flags := string([]byte{rows[0].Flag, rows[1].Flag, rows[2].Flag})
	if flags != "!* " {
		t.Errorf("flags = %q, want %q", flags, "!* ")
	}
}

func TestTargetRows(t *testing.T) {
	rows := TargetRows([]flasher.Target{
		{Name: "loader.bin", Data: make([]byte, 10)},
		{Name: "app.bin", Address: 0x1000, Data: make([]byte, 20)},
	})
	if rows[0].Flag != '!' || rows[0].Kind != 0 {
		t.Errorf("loaderboot row = %+v", rows[0])
	}
	if rows[1].Flag != '*' || rows[1].Address != 0x1000 || rows[1].Length != 20 || rows[1].Kind != 1 {
		t.Errorf("app row = %+v", rows[1])
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		msg  string
		kv   []interface{}
		want string
	}{
		{"plain", nil, "plain"},
		{"send", []interface{}{"name", "app.bin", "bytes", 10}, "send name=app.bin bytes=10"},
		{"odd", []interface{}{"dangling"}, "odd dangling"},
	}

	for _, tt := range tests {
		if got := format(tt.msg, tt.kv); got != tt.want {
			t.Errorf("format(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestPlainProgress(t *testing.T) {
	var buf bytes.Buffer
	cb := NewPlainProgress(&buf).Callback()

	cb(flasher.Progress{Phase: flasher.PhaseHandshake})
	cb(flasher.Progress{Phase: flasher.PhaseHandshake})
	cb(flasher.Progress{Phase: flasher.PhaseLoaderBoot, Target: "lb.bin", TotalBytes: 0x1000, BytesSent: 1024})
	cb(flasher.Progress{Phase: flasher.PhaseLoaderBoot, Target: "lb.bin", TotalBytes: 0x1000, BytesSent: 2048})
	cb(flasher.Progress{Phase: flasher.PhaseTransfer, Target: "app.bin", TotalBytes: 0x20, BytesSent: 0x20})
	cb(flasher.Progress{Phase: flasher.PhaseReset})

	want := "Waiting for device reset...\n" +
		"Xfer: lb.bin (0x1000)\n" +
		"Xfer: app.bin (0x20)\n" +
		"Done. Resetting device...\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
