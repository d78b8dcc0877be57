package flasher

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/marcinbor85/gohex"
)

// Target is one image to transfer: its YMODEM name, the flash address to
// burn it at, and its payload.
type Target struct {
	Name    string
	Address uint32
	Data    []byte
}

// Size returns the payload length.
func (t Target) Size() int64 {
	return int64(len(t.Data))
}

// ParseTarget parses a FILE[@ADDR] argument, ADDR being hexadecimal with
// an optional 0x prefix, and loads the file.
//
// Intel HEX files (.hex, .ihex) expand into one target per data segment.
// Each segment keeps its own address unless @ADDR is given, in which case
// the image is relocated so its lowest segment starts at ADDR.
//
// When needAddress is set, a raw binary without @ADDR is rejected with
// *MissingAddressError.
func ParseTarget(arg string, needAddress bool) ([]Target, error) {
	path, addrText, hasAddr := splitTarget(arg)

	var addr uint32
	if hasAddr {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(addrText), "0x"), 16, 32)
		if err != nil {
			return nil, &InvalidAddressError{Arg: arg, Value: addrText}
		}
		addr = uint32(v)
	}

	if isIntelHex(path) {
		return loadIntelHex(path, addr, hasAddr)
	}

	if needAddress && !hasAddr {
		return nil, &MissingAddressError{Arg: arg}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return []Target{{Name: filepath.Base(path), Address: addr, Data: data}}, nil
}

// LoadTargets parses the arguments of a write operation. The first one is
// the loaderboot and may omit its address; the others may not.
func LoadTargets(args []string) ([]Target, error) {
	var targets []Target
	for i, arg := range args {
		t, err := ParseTarget(arg, i > 0)
		if err != nil {
			return nil, err
		}
		if i == 0 && len(t) != 1 {
			return nil, fmt.Errorf("loaderboot %s must be a single image, got %d segments", arg, len(t))
		}
		targets = append(targets, t...)
	}
	return targets, nil
}

// splitTarget splits at the last '@' so paths containing '@' still work.
func splitTarget(arg string) (path, addr string, ok bool) {
	i := strings.LastIndexByte(arg, '@')
	if i < 0 {
		return arg, "", false
	}
	return arg[:i], arg[i+1:], true
}

func isIntelHex(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex":
		return true
	}
	return false
}

func loadIntelHex(path string, base uint32, relocate bool) ([]Target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return nil, fmt.Errorf("%s: no data records", path)
	}

	lowest := segments[0].Address
	for _, seg := range segments[1:] {
		if seg.Address < lowest {
			lowest = seg.Address
		}
	}

	name := filepath.Base(path)
	targets := make([]Target, 0, len(segments))
	for i, seg := range segments {
		addr := seg.Address
		if relocate {
			addr = addr - lowest + base
		}
		t := Target{Name: name, Address: addr, Data: seg.Data}
		if len(segments) > 1 {
			t.Name = fmt.Sprintf("%s.%d", name, i)
		}
		targets = append(targets, t)
	}
	return targets, nil
}
