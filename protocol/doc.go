// Package protocol implements the WS63 boot ROM command frame protocol.
//
// This package builds and validates command frames, finds response frames
// in the raw serial stream, and defines the Channel abstraction and the
// error taxonomy shared by the rest of the module.
//
// # Protocol Overview
//
// Every command and response is a frame:
//
//	[MAGIC(4)][LEN_L][LEN_H][CMD][SCMD][PAYLOAD...][CRC_L][CRC_H]
//
// Where:
//   - MAGIC = 0xDEADBEEF, little-endian (EF BE AD DE on the wire)
//   - LEN = total frame length, 10 + len(PAYLOAD)
//   - SCMD = CMD with its nibbles swapped
//   - CRC = CRC-16/XMODEM over MAGIC..PAYLOAD, little-endian
//
// # Command Builders
//
// Use the Build* functions to create command frames:
//
//	frame := protocol.BuildHandshakeCmd(921600)
//	frame := protocol.BuildDownloadCmd(addr, size, protocol.EraseSize(size))
//	err := protocol.Send(ch, frame)
//
// # Scanning
//
// The device mixes frames with free-form log text. ScanForResponse drives a
// Scanner over the channel until a frame with a valid CRC appears:
//
//	frame, err := protocol.ScanForResponse(ch, protocol.ScanTimeout, os.Stderr)
//	if protocol.IsChecksum(err) {
//	    // corrupt frame dropped, scanning may continue
//	}
//
// # Error Handling
//
// All failures are *Error values classified by ErrorKind. Match them with
// errors.Is against the sentinels:
//
//	if errors.Is(err, protocol.ErrTimeout) {
//	    // device went quiet
//	}
package protocol
