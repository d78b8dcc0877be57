package fwpkg

import (
	"bytes"
	"fmt"
)

// Kind is the partition type stored in the last field of a table entry.
type Kind uint32

const (
	// KindLoaderBoot marks the second-stage loader sent to the ROM first
	KindLoaderBoot Kind = 0

	// KindNormal marks an ordinary flash partition
	KindNormal Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindLoaderBoot:
		return "loaderboot"
	case KindNormal:
		return "normal"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Firmware is a parsed container header and partition table.
type Firmware struct {
	// Checksum is the CRC stored in the header
	Checksum uint16

	// TotalLength is the advisory container size from the header
	TotalLength uint32

	// Partitions are the table entries in file order
	Partitions []*Partition
}

// Partition is one entry of the partition table.
type Partition struct {
	// Name is the NUL-terminated name, at most 31 bytes
	Name string

	// Offset is the absolute offset of the payload within the container
	Offset uint32

	// Length is the payload size in bytes
	Length uint32

	// BurnAddress is the flash address the payload is written to
	BurnAddress uint32

	// BurnSize is the size of the flash region reserved for the payload
	BurnSize uint32

	// Kind is the partition type
	Kind Kind
}

// TableSize returns the size of the header and partition table.
func (f *Firmware) TableSize() int {
	return HeaderSize + EntrySize*len(f.Partitions)
}

// LoaderBoot returns the unique KindLoaderBoot partition.
func (f *Firmware) LoaderBoot() (*Partition, error) {
	var found *Partition
	for _, p := range f.Partitions {
		if p.Kind != KindLoaderBoot {
			continue
		}
		if found != nil {
			return nil, formatError("find loaderboot", fmt.Errorf("%w: %q and %q", ErrMissingLoaderBoot, found.Name, p.Name))
		}
		found = p
	}
	if found == nil {
		return nil, formatError("find loaderboot", ErrMissingLoaderBoot)
	}
	return found, nil
}

// Find returns the partition called name, or nil.
func (f *Firmware) Find(name string) *Partition {
	for _, p := range f.Partitions {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Clone returns a deep copy of f.
func (f *Firmware) Clone() *Firmware {
	c := &Firmware{
		Checksum:    f.Checksum,
		TotalLength: f.TotalLength,
		Partitions:  make([]*Partition, len(f.Partitions)),
	}
	for i, p := range f.Partitions {
		cp := *p
		c.Partitions[i] = &cp
	}
	return c
}

// Equal reports whether f and other describe the same header and table.
func (f *Firmware) Equal(other *Firmware) bool {
	a, errA := f.MarshalBinary()
	b, errB := other.MarshalBinary()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}
