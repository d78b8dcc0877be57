package protocol

// Frame is a decoded command frame.
type Frame struct {
	// Command is the CMD byte
	Command byte

	// Payload is the frame body between SCMD and CRC
	Payload []byte

	// Checksum is the CRC-16 carried by the frame
	Checksum uint16
}

// Len returns the total encoded length of the frame.
func (f *Frame) Len() int {
	return FrameOverhead + len(f.Payload)
}

// Encode serializes the frame back to wire form.
func (f *Frame) Encode() ([]byte, error) {
	return Encode(f.Command, f.Payload)
}
