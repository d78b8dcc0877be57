package fwpkg

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/moffa90/go-ws63flash/protocol"
)

func TestInject(t *testing.T) {
	parts := sampleParts()
	raw, src := buildContainer(t, parts)
	before, _ := src.MarshalBinary()

	bins := []Bin{
		{Name: "/tmp/build/extra.bin", Address: 0x300000, Data: fill(1000, 7)},
		{Name: "more.bin", Address: 0x310000, Data: fill(77, 9)},
	}

	var out bytes.Buffer
	got, err := Inject(&out, bytes.NewReader(raw), int64(len(raw)), src, bins)
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}

	k := len(bins)
	shift := uint32(EntrySize * k)
	wantSize := len(raw) + EntrySize*k + 1000 + 77
	if out.Len() != wantSize {
		t.Fatalf("output size = %d, want %d", out.Len(), wantSize)
	}

	after, _ := src.MarshalBinary()
	if !bytes.Equal(before, after) {
		t.Error("Inject() modified the source table")
	}

	fw, err := Read(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("Read(output) error = %v", err)
	}
	if !fw.Equal(got) {
		t.Error("returned table differs from the written one")
	}
	if len(fw.Partitions) != len(parts)+k {
		t.Fatalf("got %d partitions, want %d", len(fw.Partitions), len(parts)+k)
	}
	if fw.TotalLength != uint32(wantSize) {
		t.Errorf("TotalLength = %d, want %d", fw.TotalLength, wantSize)
	}

	for i, p := range parts {
		entry := fw.Partitions[i]
		if entry.Offset != src.Partitions[i].Offset+shift {
			t.Errorf("%s offset = %d, want %d", p.name, entry.Offset, src.Partitions[i].Offset+shift)
		}
		payload := out.Bytes()[entry.Offset : entry.Offset+entry.Length]
		if !bytes.Equal(payload, p.data) {
			t.Errorf("%s payload changed", p.name)
		}
	}

	// Original payloads stay contiguous.
	first := fw.Partitions[0]
	last := fw.Partitions[len(parts)-1]
	if !bytes.Equal(out.Bytes()[first.Offset:last.Offset+last.Length], raw[src.Partitions[0].Offset:]) {
		t.Error("original payload region is not a verbatim copy")
	}

	wantOffset := uint32(len(raw)) + shift
	for i, b := range bins {
		entry := fw.Partitions[len(parts)+i]
		if entry.Kind != KindNormal {
			t.Errorf("%s kind = %v, want %v", entry.Name, entry.Kind, KindNormal)
		}
		if entry.Offset != wantOffset {
			t.Errorf("%s offset = %d, want %d", entry.Name, entry.Offset, wantOffset)
		}
		if entry.Length != uint32(len(b.Data)) || entry.BurnSize != entry.Length {
			t.Errorf("%s length = %d, burn size = %d", entry.Name, entry.Length, entry.BurnSize)
		}
		if entry.BurnAddress != b.Address {
			t.Errorf("%s burn address = 0x%X", entry.Name, entry.BurnAddress)
		}
		if !bytes.Equal(out.Bytes()[entry.Offset:entry.Offset+entry.Length], b.Data) {
			t.Errorf("%s payload mismatch", entry.Name)
		}
		wantOffset += entry.Length
	}

	if fw.Partitions[len(parts)].Name != "extra.bin" {
		t.Errorf("name = %q, want base name", fw.Partitions[len(parts)].Name)
	}
}

func TestInjectGapPreserved(t *testing.T) {
	parts := sampleParts()[:2]
	raw, src := buildContainer(t, parts)

	// Insert 16 bytes of filler between the table and the first payload.
	gap := bytes.Repeat([]byte{0x5A}, 16)
	table := src.TableSize()
	for _, p := range src.Partitions {
		p.Offset += uint32(len(gap))
	}
	if err := src.UpdateChecksum(); err != nil {
		t.Fatal(err)
	}
	hdr, _ := src.MarshalBinary()
	spaced := append(append(append([]byte(nil), hdr...), gap...), raw[table:]...)

	var out bytes.Buffer
	fw, err := Inject(&out, bytes.NewReader(spaced), int64(len(spaced)), src, []Bin{{Name: "x.bin", Data: []byte{1, 2, 3}}})
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}

	for i, p := range parts {
		e := fw.Partitions[i]
		if !bytes.Equal(out.Bytes()[e.Offset:e.Offset+e.Length], p.data) {
			t.Errorf("%s payload misplaced", p.name)
		}
	}
}

func TestInjectLimits(t *testing.T) {
	raw, src := buildContainer(t, sampleParts())

	bins := make([]Bin, MaxPartitions-len(src.Partitions))
	for i := range bins {
		bins[i] = Bin{Name: "b.bin", Data: []byte{0}}
	}

	var out bytes.Buffer
	_, err := Inject(&out, bytes.NewReader(raw), int64(len(raw)), src, bins)
	if !errors.Is(err, protocol.ErrFormat) {
		t.Errorf("Inject(too many) error = %v, want ErrFormat", err)
	}
	if out.Len() != 0 {
		t.Error("Inject() wrote output before failing")
	}

	_, err = Inject(&out, bytes.NewReader(raw[:20]), 20, src, nil)
	if !errors.Is(err, protocol.ErrFormat) {
		t.Errorf("Inject(short source) error = %v, want ErrFormat", err)
	}
}

func TestEntryName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"app.bin", "app.bin"},
		{"/a/b/c/app.bin", "app.bin"},
		{strings.Repeat("x", 40) + ".bin", strings.Repeat("x", 31)},
	}

	for _, tt := range tests {
		if got := entryName(tt.in); got != tt.want {
			t.Errorf("entryName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
