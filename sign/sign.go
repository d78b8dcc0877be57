// Package sign produces WS63 signed-image files: a fixed 0x300-byte
// descriptor block followed by the code padded to 16 bytes.
//
// The descriptors carry the SHA-256 of the padded code but no signature;
// the boot ROM accepts such images when secure boot is not provisioned.
package sign

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/moffa90/go-ws63flash/protocol"
)

// Layout of the descriptor block.
const (
	// HeaderSize is the size of the descriptor block
	HeaderSize = 0x300

	// CodeInfoOffset is the offset of the code-info descriptor
	CodeInfoOffset = 0x100

	// Alignment is the code length granularity
	Alignment = 16

	codeAddrOffset = CodeInfoOffset + 0x20
	codeLenOffset  = CodeInfoOffset + 0x24
	codeHashOffset = CodeInfoOffset + 0x28
	encFlagOffset  = CodeInfoOffset + 0x48
)

// Descriptor constants.
const (
	RootPubKeyImageID   uint32 = 0x4B0F2D1E
	CodeInfoImageID     uint32 = 0x4B0F2D2D
	StructVersion       uint32 = 0x00010000
	KeyAlgBrainpool256  uint32 = 0x2A13C812
	FlashNoEncryptFlag  uint32 = 0x3C7896E1
	rootPubKeyStructLen uint32 = 0x100
	codeInfoStructLen   uint32 = 0x200
	keyOwnerID          uint32 = 0x40
	keyLength           uint32 = 0x40
	signatureLength     uint32 = 0x40
)

// Header is the part of the descriptor block that depends on the code.
type Header struct {
	// CodeAddress is the load address field, zero for flash images
	CodeAddress uint32

	// CodeLength is the padded code length
	CodeLength uint32

	// CodeHash is the SHA-256 of the padded code
	CodeHash [sha256.Size]byte
}

// AlignedLength returns n rounded up to Alignment.
func AlignedLength(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// NewHeader returns the header for code.
func NewHeader(code []byte) Header {
	padded := pad(code)
	return Header{
		CodeLength: uint32(len(padded)),
		CodeHash:   sha256.Sum256(padded),
	}
}

func pad(code []byte) []byte {
	padded := make([]byte, AlignedLength(len(code)))
	copy(padded, code)
	return padded
}

// MarshalBinary encodes the full descriptor block.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	le := binary.LittleEndian

	// Root public key descriptor. The word at 0x10 is undocumented and
	// must be 1.
	le.PutUint32(buf[0x00:], RootPubKeyImageID)
	le.PutUint32(buf[0x04:], StructVersion)
	le.PutUint32(buf[0x08:], rootPubKeyStructLen)
	le.PutUint32(buf[0x0C:], keyOwnerID)
	le.PutUint32(buf[0x10:], 1)
	le.PutUint32(buf[0x14:], 1)
	le.PutUint32(buf[0x18:], KeyAlgBrainpool256)
	le.PutUint32(buf[0x1C:], KeyAlgBrainpool256)
	le.PutUint32(buf[0x20:], keyLength)

	// Code info descriptor; version and MSID words stay zero.
	ci := buf[CodeInfoOffset:]
	le.PutUint32(ci[0x00:], CodeInfoImageID)
	le.PutUint32(ci[0x04:], StructVersion)
	le.PutUint32(ci[0x08:], codeInfoStructLen)
	le.PutUint32(ci[0x0C:], signatureLength)

	le.PutUint32(buf[codeAddrOffset:], h.CodeAddress)
	le.PutUint32(buf[codeLenOffset:], h.CodeLength)
	copy(buf[codeHashOffset:], h.CodeHash[:])
	le.PutUint32(buf[encFlagOffset:], FlashNoEncryptFlag)

	return buf, nil
}

// Sign returns the signed image for code.
func Sign(code []byte) []byte {
	hdr, _ := NewHeader(code).MarshalBinary()
	return append(hdr, pad(code)...)
}

// Encode reads all of r and writes the signed image to w. It returns the
// number of bytes written.
func Encode(w io.Writer, r io.Reader) (int64, error) {
	code, err := io.ReadAll(r)
	if err != nil {
		return 0, protocol.NewError(protocol.KindIO, "read code", err)
	}

	n, err := w.Write(Sign(code))
	if err != nil {
		return int64(n), protocol.NewError(protocol.KindIO, "write signed image", err)
	}
	return int64(n), nil
}

// Verify checks the descriptor block of a signed image against its code
// and returns the parsed header.
func Verify(image []byte) (Header, error) {
	var h Header
	if len(image) < HeaderSize {
		return h, protocol.Errorf(protocol.KindFormat, "verify", "image of %d bytes shorter than header", len(image))
	}

	le := binary.LittleEndian
	if id := le.Uint32(image[0:]); id != RootPubKeyImageID {
		return h, protocol.Errorf(protocol.KindFormat, "verify", "root key descriptor id 0x%08X", id)
	}
	if id := le.Uint32(image[CodeInfoOffset:]); id != CodeInfoImageID {
		return h, protocol.Errorf(protocol.KindFormat, "verify", "code info descriptor id 0x%08X", id)
	}

	h.CodeAddress = le.Uint32(image[codeAddrOffset:])
	h.CodeLength = le.Uint32(image[codeLenOffset:])
	copy(h.CodeHash[:], image[codeHashOffset:])

	code := image[HeaderSize:]
	if int64(h.CodeLength) != int64(len(code)) {
		return h, protocol.Errorf(protocol.KindFormat, "verify", "code length field %d, image carries %d", h.CodeLength, len(code))
	}

	sum := sha256.Sum256(code)
	if !bytes.Equal(sum[:], h.CodeHash[:]) {
		return h, protocol.NewError(protocol.KindChecksum, "verify", fmt.Errorf("sha256 %x, header says %x", sum, h.CodeHash))
	}
	return h, nil
}
