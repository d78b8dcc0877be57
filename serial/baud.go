package serial

import (
	"sort"

	"github.com/moffa90/go-ws63flash/protocol"
)

// DefaultBaudRate is the speed the boot ROM always starts at.
const DefaultBaudRate = protocol.DefaultBaudRate

// SupportedBaudRates returns the speeds with a termios constant on this
// platform, in ascending order.
func SupportedBaudRates() []int {
	rates := make([]int, 0, len(baudTable))
	for rate := range baudTable {
		rates = append(rates, rate)
	}
	sort.Ints(rates)
	return rates
}

// ValidateBaudRate returns nil if baud can be configured on this platform.
// Rates outside the table are accepted only where the driver supports
// arbitrary speeds.
func ValidateBaudRate(baud int) error {
	if baud <= 0 {
		return protocol.Errorf(protocol.KindUnsupportedBaud, "validate baud rate", "%d is not a valid speed", baud)
	}
	if _, ok := baudTable[baud]; ok || arbitraryBaud {
		return nil
	}
	return protocol.Errorf(protocol.KindUnsupportedBaud, "validate baud rate", "%d not in %v", baud, SupportedBaudRates())
}

// IsStandardBaudRate reports whether baud has a termios constant.
func IsStandardBaudRate(baud int) bool {
	_, ok := baudTable[baud]
	return ok
}
