package serial

import (
	"errors"
	"sort"
	"testing"

	"github.com/moffa90/go-ws63flash/protocol"
)

func TestSupportedBaudRates(t *testing.T) {
	rates := SupportedBaudRates()

	if len(rates) == 0 || rates[0] != DefaultBaudRate {
		t.Fatalf("SupportedBaudRates() = %v, want %d first", rates, DefaultBaudRate)
	}
	if !sort.IntsAreSorted(rates) {
		t.Errorf("SupportedBaudRates() not sorted: %v", rates)
	}
	for _, r := range rates {
		if !IsStandardBaudRate(r) {
			t.Errorf("IsStandardBaudRate(%d) = false", r)
		}
	}
}

func TestValidateBaudRate(t *testing.T) {
	tests := []struct {
		name    string
		baud    int
		wantErr bool
	}{
		{"default", 115200, false},
		{"second table entry", 230400, false},
		{"zero", 0, true},
		{"negative", -9600, true},
		{"non-standard", 123456, !arbitraryBaud},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaudRate(tt.baud)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBaudRate(%d) error = %v, wantErr %v", tt.baud, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, protocol.ErrUnsupportedBaud) {
				t.Errorf("ValidateBaudRate(%d) error = %v, want ErrUnsupportedBaud", tt.baud, err)
			}
		})
	}
}
