package fwpkg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-ws63flash/protocol"
)

// Constants for the container layout.
const (
	// Magic is the container magic, EF BE AD DE on disk
	Magic uint32 = 0xDEADBEEF

	// HeaderSize is the size of the fixed header
	HeaderSize = 12

	// EntrySize is the size of one partition table entry
	EntrySize = 52

	// NameSize is the size of the NUL-padded name field
	NameSize = 32

	// MaxPartitions bounds the partition count; a valid container has fewer
	MaxPartitions = 16

	// checksumOffset is where the CRC-covered region starts (COUNT)
	checksumOffset = 6
)

// ErrMissingLoaderBoot is returned when a container does not have exactly
// one loaderboot partition.
var ErrMissingLoaderBoot = errors.New("no unique loaderboot partition")

func formatError(op string, err error) error {
	return protocol.NewError(protocol.KindFormat, op, err)
}

// ReadFile parses the header and partition table of the container at path.
//
// Example:
//
//	fw, err := fwpkg.ReadFile("firmware.fwpkg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d partitions\n", len(fw.Partitions))
func ReadFile(path string) (*Firmware, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}

// Read parses a container header and partition table from r. Payloads are
// not read.
//
// Returns a KindFormat error for a bad magic, partition count or short
// table, and a KindChecksum error when the stored CRC disagrees.
func Read(r io.Reader) (*Firmware, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, formatError("read header", err)
	}

	if binary.LittleEndian.Uint32(header[0:4]) != Magic {
		return nil, protocol.Errorf(protocol.KindFormat, "read header", "invalid magic % X", header[0:4])
	}

	count := int(binary.LittleEndian.Uint16(header[6:8]))
	if count >= MaxPartitions {
		return nil, protocol.Errorf(protocol.KindFormat, "read header", "partition count %d exceeds maximum %d", count, MaxPartitions-1)
	}

	buf := make([]byte, HeaderSize+EntrySize*count)
	copy(buf, header)
	if _, err := io.ReadFull(r, buf[HeaderSize:]); err != nil {
		return nil, formatError("read partition table", err)
	}

	fw := &Firmware{}
	if err := fw.UnmarshalBinary(buf); err != nil {
		return nil, err
	}

	if actual := fw.computeChecksum(buf); actual != fw.Checksum {
		return nil, protocol.Errorf(protocol.KindChecksum, "read header", "got 0x%04X, expected 0x%04X", actual, fw.Checksum)
	}

	return fw, nil
}

// UnmarshalBinary decodes a header and table without verifying the CRC.
func (f *Firmware) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return protocol.Errorf(protocol.KindFormat, "unmarshal", "header too short: %d bytes", len(data))
	}

	count := int(binary.LittleEndian.Uint16(data[6:8]))
	if len(data) < HeaderSize+EntrySize*count {
		return protocol.Errorf(protocol.KindFormat, "unmarshal", "table of %d entries truncated at %d bytes", count, len(data))
	}

	f.Checksum = binary.LittleEndian.Uint16(data[4:6])
	f.TotalLength = binary.LittleEndian.Uint32(data[8:12])
	f.Partitions = make([]*Partition, count)

	for i := range f.Partitions {
		f.Partitions[i] = parseEntry(data[HeaderSize+EntrySize*i:])
	}
	return nil
}

func parseEntry(e []byte) *Partition {
	name := e[:NameSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	return &Partition{
		Name:        string(name),
		Offset:      binary.LittleEndian.Uint32(e[32:36]),
		Length:      binary.LittleEndian.Uint32(e[36:40]),
		BurnAddress: binary.LittleEndian.Uint32(e[40:44]),
		BurnSize:    binary.LittleEndian.Uint32(e[44:48]),
		Kind:        Kind(binary.LittleEndian.Uint32(e[48:52])),
	}
}
