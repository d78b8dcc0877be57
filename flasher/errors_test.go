package flasher

import (
	"strings"
	"testing"
)

func TestPartitionNotFoundError(t *testing.T) {
	err := &PartitionNotFoundError{Name: "app.bin"}

	errMsg := err.Error()

	if !strings.Contains(errMsg, `"app.bin"`) {
		t.Errorf("error message should contain the partition name, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "not found") {
		t.Errorf("error message should contain 'not found', got: %s", errMsg)
	}
}

func TestMissingAddressError(t *testing.T) {
	err := &MissingAddressError{Arg: "app.bin"}

	errMsg := err.Error()

	if !strings.Contains(errMsg, "app.bin@addr") {
		t.Errorf("error message should contain the hint, got: %s", errMsg)
	}
}

func TestInvalidAddressError(t *testing.T) {
	err := &InvalidAddressError{Arg: "app.bin@zz", Value: "zz"}

	errMsg := err.Error()

	if !strings.Contains(errMsg, `"zz"`) {
		t.Errorf("error message should contain the bad value, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "app.bin@zz") {
		t.Errorf("error message should contain the argument, got: %s", errMsg)
	}
}

func TestNoTargetsError(t *testing.T) {
	err := &NoTargetsError{Operation: "write"}

	if errMsg := err.Error(); !strings.HasPrefix(errMsg, "write:") {
		t.Errorf("error message should start with the operation, got: %s", errMsg)
	}
}

func TestErrorTypes(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"PartitionNotFoundError", &PartitionNotFoundError{}},
		{"MissingAddressError", &MissingAddressError{}},
		{"InvalidAddressError", &InvalidAddressError{}},
		{"NoTargetsError", &NoTargetsError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() == "" {
				t.Error("Error() returned empty string")
			}
		})
	}
}
