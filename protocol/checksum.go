package protocol

// CRC-16/XMODEM parameters.
const (
	// CRC16Polynomial is the CRC-16/XMODEM generator polynomial
	CRC16Polynomial = 0x1021

	// CRC16InitialValue is the CRC-16/XMODEM initial register value
	CRC16InitialValue = 0x0000

	// CRC16HighBitMask is the high bit mask used when building the table
	CRC16HighBitMask = 0x8000

	// BitsPerByte is the number of bits per byte
	BitsPerByte = 8
)

var crc16Table = makeCRC16Table()

func makeCRC16Table() [256]uint16 {
	var table [256]uint16
	for i := range table {
		crc := uint16(i) << BitsPerByte
		for j := 0; j < BitsPerByte; j++ {
			if crc&CRC16HighBitMask != 0 {
				crc = (crc << 1) ^ CRC16Polynomial
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// CRC16 computes the CRC-16/XMODEM checksum of data.
//
// The same checksum protects command frames, YMODEM blocks and fwpkg
// headers. The byte order it is stored in depends on the caller:
// little-endian in frames and containers, big-endian in YMODEM blocks.
func CRC16(data []byte) uint16 {
	crc := uint16(CRC16InitialValue)
	for _, b := range data {
		crc = (crc << BitsPerByte) ^ crc16Table[byte(crc>>BitsPerByte)^b]
	}
	return crc
}
