package flasher

import "fmt"

// PartitionNotFoundError indicates that a requested partition is not in
// the container.
type PartitionNotFoundError struct {
	Name string
}

func (e *PartitionNotFoundError) Error() string {
	return fmt.Sprintf("partition %q not found in container", e.Name)
}

// MissingAddressError indicates that a file argument lacks its @address.
type MissingAddressError struct {
	Arg string
}

func (e *MissingAddressError) Error() string {
	return fmt.Sprintf("address needed for %s (hint: %s@addr)", e.Arg, e.Arg)
}

// InvalidAddressError indicates that the text after @ is not a hex address.
type InvalidAddressError struct {
	Arg   string
	Value string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q for %s", e.Value, e.Arg)
}

// NoTargetsError indicates an operation was given nothing to send.
type NoTargetsError struct {
	Operation string
}

func (e *NoTargetsError) Error() string {
	return fmt.Sprintf("%s: no images given", e.Operation)
}
