package protocol

import (
	"encoding/binary"
	"io"
)

// maxZeroWrites bounds how many times Send retries a write that made no progress.
const maxZeroWrites = 3

// SwapNibbles exchanges the high and low nibble of b. The SCMD byte of
// every frame is the nibble-swapped CMD byte.
func SwapNibbles(b byte) byte {
	return b<<4 | b>>4
}

// Encode constructs a command frame.
//
// Frame structure:
//
//	[MAGIC(4)][LEN_L][LEN_H][CMD][SCMD][PAYLOAD...][CRC_L][CRC_H]
//
// LEN is the total frame length and the CRC covers everything before it.
// Returns an error if the payload exceeds MaxPayloadSize.
func Encode(cmd byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, Errorf(KindFormat, "encode frame", "payload of %d bytes exceeds maximum %d", len(payload), MaxPayloadSize)
	}

	total := FrameOverhead + len(payload)
	frame := make([]byte, 0, total)

	frame = binary.LittleEndian.AppendUint32(frame, Magic)
	frame = binary.LittleEndian.AppendUint16(frame, uint16(total))
	frame = append(frame, cmd, SwapNibbles(cmd))
	frame = append(frame, payload...)
	frame = binary.LittleEndian.AppendUint16(frame, CRC16(frame))

	return frame, nil
}

// mustEncode is used by the fixed-size command builders whose payloads
// can never exceed MaxPayloadSize.
func mustEncode(cmd byte, payload []byte) []byte {
	frame, err := Encode(cmd, payload)
	if err != nil {
		panic(err)
	}
	return frame
}

// Send writes an encoded frame to ch, retrying partial writes until the
// whole frame has been accepted.
func Send(ch Channel, frame []byte) error {
	zero := 0
	for len(frame) > 0 {
		n, err := ch.Write(frame)
		if err != nil {
			return NewError(KindIO, "send frame", err)
		}
		if n == 0 {
			zero++
			if zero >= maxZeroWrites {
				return NewError(KindIO, "send frame", io.ErrShortWrite)
			}
			continue
		}
		zero = 0
		frame = frame[n:]
	}
	return nil
}

// baudPayload is the payload shared by the handshake and set-baud commands.
func baudPayload(baud uint32) []byte {
	payload := make([]byte, 0, 8)
	payload = binary.LittleEndian.AppendUint32(payload, baud)
	payload = binary.LittleEndian.AppendUint32(payload, HandshakeMagic)
	return payload
}

// BuildHandshakeCmd constructs a handshake frame. The baud rate in the
// payload is the speed the ROM loader switches to after acknowledging.
//
// Payload structure:
//
//	[BAUD(4)][0x0108(4)]
func BuildHandshakeCmd(baud uint32) []byte {
	return mustEncode(CmdHandshake, baudPayload(baud))
}

// BuildSetBaudRateCmd constructs a set-baud-rate frame for the loaderboot.
//
// Payload structure:
//
//	[BAUD(4)][0x0108(4)]
func BuildSetBaudRateCmd(baud uint32) []byte {
	return mustEncode(CmdSetBaudRate, baudPayload(baud))
}

// BuildDownloadCmd constructs a download frame that erases eraseSize bytes
// at addr and prepares the loaderboot to receive length bytes over YMODEM.
//
// Payload structure:
//
//	[ADDR(4)][LEN(4)][ERASE(4)][0x00][0xFF]
func BuildDownloadCmd(addr, length, eraseSize uint32) []byte {
	payload := make([]byte, 0, 14)
	payload = binary.LittleEndian.AppendUint32(payload, addr)
	payload = binary.LittleEndian.AppendUint32(payload, length)
	payload = binary.LittleEndian.AppendUint32(payload, eraseSize)
	payload = append(payload, 0x00, 0xFF)
	return mustEncode(CmdDownload, payload)
}

// BuildEraseCmd constructs the whole-flash erase frame: a download frame
// carrying the literal placeholder words of the command template.
func BuildEraseCmd() []byte {
	return BuildDownloadCmd(placeholderAddress, placeholderLength, placeholderErase)
}

// BuildResetCmd constructs a reset frame.
func BuildResetCmd() []byte {
	return mustEncode(CmdReset, []byte{0x00, 0x00})
}

// EraseSize returns the erase size for an image of length bytes, rounded
// up to whole EraseBlockSize blocks.
func EraseSize(length uint32) uint32 {
	blocks := (uint64(length) + EraseBlockSize - 1) / EraseBlockSize
	return uint32(blocks * EraseBlockSize)
}

// IsEraseCmd returns true if f carries the whole-flash erase template.
func IsEraseCmd(f *Frame) bool {
	if f.Command != CmdDownload || len(f.Payload) < 12 {
		return false
	}
	return binary.LittleEndian.Uint32(f.Payload[0:4]) == placeholderAddress &&
		binary.LittleEndian.Uint32(f.Payload[4:8]) == placeholderLength &&
		binary.LittleEndian.Uint32(f.Payload[8:12]) == placeholderErase
}
