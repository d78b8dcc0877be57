package protocol

// Frame structure constants for the WS63 ROM loader.
const (
	// Magic is the start-of-frame marker, stored little-endian (EF BE AD DE)
	Magic uint32 = 0xDEADBEEF

	// MagicSize is the size of the start-of-frame marker in bytes
	MagicSize = 4

	// FrameOverhead is the number of non-payload bytes in a frame:
	// MAGIC(4) + LEN(2) + CMD(1) + SCMD(1) + CRC(2)
	FrameOverhead = 10

	// MaxPayloadSize is the largest payload a single frame may carry
	MaxPayloadSize = 1024

	// MaxFrameSize is the largest possible encoded frame
	MaxFrameSize = FrameOverhead + MaxPayloadSize

	// lengthOffset is the offset of the LEN field within a frame
	lengthOffset = 4

	// commandOffset is the offset of the CMD field within a frame
	commandOffset = 6

	// payloadOffset is the offset of the first payload byte within a frame
	payloadOffset = 8
)

// Command codes understood by the ROM loader and the loaderboot.
const (
	// CmdHandshake asks the ROM loader to enter YMODEM mode
	CmdHandshake = 0xF0

	// CmdHandshakeAck is the command byte of the loader's handshake reply
	CmdHandshakeAck = 0xE1

	// CmdSetBaudRate switches the loaderboot UART speed
	CmdSetBaudRate = 0x5A

	// CmdDownload erases a flash range and prepares a YMODEM receive into it
	CmdDownload = 0xD2

	// CmdReset reboots the device
	CmdReset = 0x87
)

// DefaultBaudRate is the speed the ROM loader always starts at.
const DefaultBaudRate = 115200

// HandshakeMagic is the constant carried in the second word of the
// handshake and set-baud payloads.
const HandshakeMagic uint32 = 0x0108

// EraseBlockSize is the erase granularity used to derive a download's
// erase size.
const EraseBlockSize = 0x2000

// Download payload placeholders, sent verbatim by the erase-only command.
const (
	placeholderAddress uint32 = 0xAAAAAAAA
	placeholderLength  uint32 = 0xBBBBBBBB
	placeholderErase   uint32 = 0xCCCCCCCC
)

// HandshakeAck is the byte signature the ROM loader answers a handshake
// with: a CmdHandshakeAck frame carrying {0x5A, 0x00}, up to the CRC.
var HandshakeAck = []byte{0xEF, 0xBE, 0xAD, 0xDE, 0x0C, 0x00, 0xE1, 0x1E, 0x5A, 0x00}

// magicBytes is Magic as it appears on the wire.
var magicBytes = [MagicSize]byte{0xEF, 0xBE, 0xAD, 0xDE}
