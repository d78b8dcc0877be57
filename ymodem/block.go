package ymodem

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/moffa90/go-ws63flash/protocol"
)

// Control characters.
const (
	SOH        = 0x01
	STX        = 0x02
	EOT        = 0x04
	ACK        = 0x06
	NAK        = 0x15
	CRCRequest = 'C'
)

// Block sizes.
const (
	// HeaderPayloadSize is the payload size of a SOH block
	HeaderPayloadSize = 128

	// DataPayloadSize is the payload size of a STX block
	DataPayloadSize = 1024

	// blockOverhead is TYPE + SEQ + ~SEQ + CRC(2)
	blockOverhead = 5

	// HeaderBlockSize is the encoded size of a SOH block
	HeaderBlockSize = HeaderPayloadSize + blockOverhead

	// DataBlockSize is the encoded size of a STX block
	DataBlockSize = DataPayloadSize + blockOverhead
)

// Block is a decoded YMODEM block.
type Block struct {
	// Type is SOH or STX
	Type byte

	// Seq is the block number modulo 256
	Seq byte

	// Payload is 128 or 1024 bytes
	Payload []byte
}

// BlockCount returns the number of data blocks needed for size bytes.
func BlockCount(size int64) int {
	return int((size + DataPayloadSize - 1) / DataPayloadSize)
}

func encodeBlock(typ, seq byte, payload []byte) []byte {
	blk := make([]byte, 0, len(payload)+blockOverhead)
	blk = append(blk, typ, seq, 0xFF-seq)
	blk = append(blk, payload...)
	return binary.BigEndian.AppendUint16(blk, protocol.CRC16(payload))
}

// HeaderBlock builds block 0 announcing a file.
//
// Payload format:
//
//	[NAME][NUL][0xSIZE][NUL...]
//
// The name is truncated so that name and size always fit in 128 bytes.
func HeaderBlock(name string, size int64) []byte {
	sizeStr := "0x" + strconv.FormatInt(size, 16)
	if limit := HeaderPayloadSize - len(sizeStr) - 2; len(name) > limit {
		name = name[:limit]
	}

	payload := make([]byte, HeaderPayloadSize)
	n := copy(payload, name)
	copy(payload[n+1:], sizeStr)
	return encodeBlock(SOH, 0, payload)
}

// ClosingBlock builds the all-zero block 0 that ends the session.
func ClosingBlock() []byte {
	return encodeBlock(SOH, 0, make([]byte, HeaderPayloadSize))
}

// DataBlock builds a 1K data block. data is zero-padded to 1024 bytes;
// longer data is truncated.
func DataBlock(seq byte, data []byte) []byte {
	payload := make([]byte, DataPayloadSize)
	copy(payload, data)
	return encodeBlock(STX, seq, payload)
}

// ParseBlock validates an encoded block and returns its contents.
func ParseBlock(blk []byte) (*Block, error) {
	if len(blk) < 1 {
		return nil, protocol.Errorf(protocol.KindFormat, "parse block", "empty block")
	}

	var size int
	switch blk[0] {
	case SOH:
		size = HeaderBlockSize
	case STX:
		size = DataBlockSize
	default:
		return nil, protocol.Errorf(protocol.KindFormat, "parse block", "unexpected block type 0x%02X", blk[0])
	}
	if len(blk) != size {
		return nil, protocol.Errorf(protocol.KindFormat, "parse block", "block length %d, expected %d", len(blk), size)
	}
	if blk[1] != 0xFF-blk[2] {
		return nil, protocol.Errorf(protocol.KindFormat, "parse block", "sequence 0x%02X does not match complement 0x%02X", blk[1], blk[2])
	}

	payload := blk[3 : size-2]
	expected := binary.BigEndian.Uint16(blk[size-2:])
	if actual := protocol.CRC16(payload); actual != expected {
		return nil, protocol.Errorf(protocol.KindChecksum, "parse block", "got 0x%04X, expected 0x%04X", actual, expected)
	}

	return &Block{Type: blk[0], Seq: blk[1], Payload: append([]byte(nil), payload...)}, nil
}

// ParseHeader decodes the name and size announced by a header payload.
// An empty name marks the closing block.
func ParseHeader(payload []byte) (name string, size int64, err error) {
	end := bytes.IndexByte(payload, 0)
	if end < 0 {
		return "", 0, protocol.Errorf(protocol.KindFormat, "parse header", "file name not terminated")
	}
	name = string(payload[:end])
	if name == "" {
		return "", 0, nil
	}

	rest := payload[end+1:]
	if i := bytes.IndexAny(rest, "\x00 "); i >= 0 {
		rest = rest[:i]
	}
	field := string(rest)

	switch {
	case strings.HasPrefix(field, "0x"), strings.HasPrefix(field, "0X"):
		size, err = strconv.ParseInt(field[2:], 16, 64)
	default:
		size, err = strconv.ParseInt(field, 10, 64)
	}
	if err != nil {
		return "", 0, protocol.Errorf(protocol.KindFormat, "parse header", "invalid size %q", field)
	}
	return name, size, nil
}
