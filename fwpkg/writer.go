package fwpkg

import (
	"encoding/binary"

	"github.com/moffa90/go-ws63flash/protocol"
)

// MarshalBinary encodes the header and partition table. The stored
// Checksum is written as is; call UpdateChecksum after editing the table.
func (f *Firmware) MarshalBinary() ([]byte, error) {
	if len(f.Partitions) >= MaxPartitions {
		return nil, protocol.Errorf(protocol.KindFormat, "marshal", "partition count %d exceeds maximum %d", len(f.Partitions), MaxPartitions-1)
	}

	buf := make([]byte, 0, f.TableSize())
	buf = binary.LittleEndian.AppendUint32(buf, Magic)
	buf = binary.LittleEndian.AppendUint16(buf, f.Checksum)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(f.Partitions)))
	buf = binary.LittleEndian.AppendUint32(buf, f.TotalLength)

	for _, p := range f.Partitions {
		var name [NameSize]byte
		copy(name[:], p.Name)
		buf = append(buf, name[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, p.Offset)
		buf = binary.LittleEndian.AppendUint32(buf, p.Length)
		buf = binary.LittleEndian.AppendUint32(buf, p.BurnAddress)
		buf = binary.LittleEndian.AppendUint32(buf, p.BurnSize)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Kind))
	}

	return buf, nil
}

// ComputeChecksum computes the CRC of the current header and table.
func (f *Firmware) ComputeChecksum() (uint16, error) {
	buf, err := f.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return f.computeChecksum(buf), nil
}

// UpdateChecksum stores the CRC of the current header and table.
func (f *Firmware) UpdateChecksum() error {
	crc, err := f.ComputeChecksum()
	if err != nil {
		return err
	}
	f.Checksum = crc
	return nil
}

func (f *Firmware) computeChecksum(table []byte) uint16 {
	return protocol.CRC16(table[checksumOffset:f.TableSize()])
}
