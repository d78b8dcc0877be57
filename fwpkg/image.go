package fwpkg

import (
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-ws63flash/protocol"
)

// Image is an open container file.
type Image struct {
	*Firmware

	file *os.File
	size int64
	path string
}

// Open opens the container at path and parses its table. The file stays
// open for partition reads until Close.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	fw, err := Read(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Image{Firmware: fw, file: f, size: st.Size(), path: path}, nil
}

// Path returns the path the image was opened from.
func (img *Image) Path() string {
	return img.path
}

// Size returns the container file size.
func (img *Image) Size() int64 {
	return img.size
}

// ReaderAt exposes the raw container bytes.
func (img *Image) ReaderAt() io.ReaderAt {
	return img.file
}

// PartitionReader returns a reader over p's payload. The payload must lie
// within the file.
func (img *Image) PartitionReader(p *Partition) (*io.SectionReader, error) {
	end := int64(p.Offset) + int64(p.Length)
	if end > img.size {
		return nil, protocol.Errorf(protocol.KindFormat, "read partition "+p.Name,
			"payload [0x%x, 0x%x) beyond end of file (0x%x)", p.Offset, end, img.size)
	}
	return io.NewSectionReader(img.file, int64(p.Offset), int64(p.Length)), nil
}

// ReadPartition reads p's payload into memory.
func (img *Image) ReadPartition(p *Partition) ([]byte, error) {
	r, err := img.PartitionReader(p)
	if err != nil {
		return nil, err
	}

	data := make([]byte, p.Length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, protocol.NewError(protocol.KindIO, "read partition "+p.Name, err)
	}
	return data, nil
}

// Close closes the underlying file.
func (img *Image) Close() error {
	return img.file.Close()
}
