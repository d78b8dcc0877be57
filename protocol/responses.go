package protocol

import (
	"bytes"
	"encoding/binary"
)

// Decode validates a complete frame and extracts its command and payload.
// Checks magic, declared length, the SCMD mirror byte and the CRC.
//
// Returns a KindFormat error for structural problems and a KindChecksum
// error when only the CRC disagrees.
func Decode(frame []byte) (*Frame, error) {
	if len(frame) < FrameOverhead {
		return nil, Errorf(KindFormat, "decode frame", "frame too short: got %d bytes, minimum is %d", len(frame), FrameOverhead)
	}

	if !bytes.Equal(frame[:MagicSize], magicBytes[:]) {
		return nil, Errorf(KindFormat, "decode frame", "invalid magic % X", frame[:MagicSize])
	}

	total := int(binary.LittleEndian.Uint16(frame[lengthOffset:]))
	if total != len(frame) {
		return nil, Errorf(KindFormat, "decode frame", "frame length mismatch: header says %d, got %d bytes", total, len(frame))
	}
	if total > MaxFrameSize {
		return nil, Errorf(KindFormat, "decode frame", "frame length %d exceeds maximum %d", total, MaxFrameSize)
	}

	cmd := frame[commandOffset]
	if frame[commandOffset+1] != SwapNibbles(cmd) {
		return nil, Errorf(KindFormat, "decode frame", "command mirror mismatch: cmd 0x%02X, scmd 0x%02X", cmd, frame[commandOffset+1])
	}

	expected := binary.LittleEndian.Uint16(frame[total-2:])
	actual := CRC16(frame[:total-2])
	if expected != actual {
		return nil, Errorf(KindChecksum, "decode frame", "got 0x%04X, expected 0x%04X", actual, expected)
	}

	payload := make([]byte, total-FrameOverhead)
	copy(payload, frame[payloadOffset:total-2])

	return &Frame{Command: cmd, Payload: payload, Checksum: expected}, nil
}

// DownloadRequest is the decoded payload of a download frame.
type DownloadRequest struct {
	Address   uint32
	Length    uint32
	EraseSize uint32
}

// ParseDownloadPayload decodes the payload of a CmdDownload frame.
//
// Payload format:
//
//	[ADDR(4)][LEN(4)][ERASE(4)][0x00][0xFF]
func ParseDownloadPayload(payload []byte) (*DownloadRequest, error) {
	if len(payload) != 14 {
		return nil, Errorf(KindFormat, "parse download", "invalid payload length: got %d bytes, expected 14", len(payload))
	}
	return &DownloadRequest{
		Address:   binary.LittleEndian.Uint32(payload[0:4]),
		Length:    binary.LittleEndian.Uint32(payload[4:8]),
		EraseSize: binary.LittleEndian.Uint32(payload[8:12]),
	}, nil
}

// ParseBaudPayload decodes the baud rate carried by a handshake or
// set-baud frame.
//
// Payload format:
//
//	[BAUD(4)][0x0108(4)]
func ParseBaudPayload(payload []byte) (uint32, error) {
	if len(payload) != 8 {
		return 0, Errorf(KindFormat, "parse baud", "invalid payload length: got %d bytes, expected 8", len(payload))
	}
	if m := binary.LittleEndian.Uint32(payload[4:8]); m != HandshakeMagic {
		return 0, Errorf(KindFormat, "parse baud", "unexpected trailer 0x%08X", m)
	}
	return binary.LittleEndian.Uint32(payload[0:4]), nil
}
