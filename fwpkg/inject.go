package fwpkg

import (
	"io"
	"path/filepath"

	"github.com/moffa90/go-ws63flash/protocol"
)

// Bin is a standalone binary to add to a container.
type Bin struct {
	// Name is the file name; only its base name is stored
	Name string

	// Address is the flash address to burn Data at
	Address uint32

	// Data is the payload
	Data []byte
}

// Inject writes to w a copy of the container src with bins appended as
// KindNormal partitions, and returns the new table. fw must be the table
// read from src and srcSize its length in bytes. fw is not modified.
//
// Output layout:
//
//	[header][old entries][new entries][src from old table end to EOF][bins...]
//
// Every byte after the old table moves forward by EntrySize*len(bins), so
// existing offsets shift by that amount. New payloads start at
// srcSize + EntrySize*len(bins), in argument order.
//
// TotalLength is set to the size of the output. The vendor's packaging
// tool copies it from src unchanged, so for the same input the two outputs
// differ in header bytes 8..11 and in the CRC at bytes 4..5.
func Inject(w io.Writer, src io.ReaderAt, srcSize int64, fw *Firmware, bins []Bin) (*Firmware, error) {
	if len(fw.Partitions)+len(bins) >= MaxPartitions {
		return nil, protocol.Errorf(protocol.KindFormat, "inject", "%d partitions plus %d new exceeds maximum %d",
			len(fw.Partitions), len(bins), MaxPartitions-1)
	}

	oldTable := int64(fw.TableSize())
	if srcSize < oldTable {
		return nil, protocol.Errorf(protocol.KindFormat, "inject", "source of %d bytes shorter than its table (%d)", srcSize, oldTable)
	}

	shift := uint32(EntrySize * len(bins))
	out := fw.Clone()
	for _, p := range out.Partitions {
		p.Offset += shift
	}

	next := uint64(srcSize) + uint64(shift)
	for _, b := range bins {
		size := uint64(len(b.Data))
		if next+size > 0xFFFFFFFF {
			return nil, protocol.Errorf(protocol.KindFormat, "inject", "%s would end beyond 4 GiB", b.Name)
		}
		out.Partitions = append(out.Partitions, &Partition{
			Name:        entryName(b.Name),
			Offset:      uint32(next),
			Length:      uint32(size),
			BurnAddress: b.Address,
			BurnSize:    uint32(size),
			Kind:        KindNormal,
		})
		next += size
	}
	out.TotalLength = uint32(next)

	if err := out.UpdateChecksum(); err != nil {
		return nil, err
	}

	table, err := out.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(table); err != nil {
		return nil, protocol.NewError(protocol.KindIO, "inject", err)
	}

	body := io.NewSectionReader(src, oldTable, srcSize-oldTable)
	if _, err := io.Copy(w, body); err != nil {
		return nil, protocol.NewError(protocol.KindIO, "inject", err)
	}

	for _, b := range bins {
		if _, err := w.Write(b.Data); err != nil {
			return nil, protocol.NewError(protocol.KindIO, "inject "+b.Name, err)
		}
	}

	return out, nil
}

// entryName returns the base name of path, cut to leave room for the NUL.
func entryName(path string) string {
	name := filepath.Base(path)
	if len(name) > NameSize-1 {
		name = name[:NameSize-1]
	}
	return name
}
