package protocol

import "testing"

func TestCRC16(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x0000,
		},
		{
			name:     "check string",
			data:     []byte("123456789"),
			expected: 0x31C3,
		},
		{
			name:     "single A",
			data:     []byte("A"),
			expected: 0x58E5,
		},
		{
			name:     "single zero",
			data:     []byte{0x00},
			expected: 0x0000,
		},
		{
			name:     "single 0xFF",
			data:     []byte{0xFF},
			expected: 0x1EF0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CRC16(tt.data)
			if result != tt.expected {
				t.Errorf("CRC16() = 0x%04X, want 0x%04X", result, tt.expected)
			}
		})
	}
}

func TestCRC16Table(t *testing.T) {
	// Spot checks against the published XMODEM table.
	tests := []struct {
		index    int
		expected uint16
	}{
		{0, 0x0000},
		{1, 0x1021},
		{2, 0x2042},
		{255, 0x1EF0},
	}

	for _, tt := range tests {
		if crc16Table[tt.index] != tt.expected {
			t.Errorf("crc16Table[%d] = 0x%04X, want 0x%04X", tt.index, crc16Table[tt.index], tt.expected)
		}
	}
}

func TestCRC16Frame(t *testing.T) {
	frame := BuildResetCmd()
	body := frame[:len(frame)-2]
	stored := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8
	if got := CRC16(body); got != stored {
		t.Errorf("CRC16(body) = 0x%04X, stored 0x%04X", got, stored)
	}
}

func BenchmarkCRC16(b *testing.B) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CRC16(data)
	}
}
