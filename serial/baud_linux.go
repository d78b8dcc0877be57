//go:build linux

package serial

import (
	"golang.org/x/sys/unix"

	"github.com/moffa90/go-ws63flash/protocol"
)

// Linux can program any divisor through termios2, so unknown speeds are
// handed to the driver.
const arbitraryBaud = true

var baudTable = map[int]uint32{
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
}

// lineProbe is a second descriptor on the tty used to read back the
// termios the driver accepted. It must be opened before the port takes
// exclusive access.
type lineProbe struct {
	fd int
}

func openLineProbe(path string) (*lineProbe, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, protocol.NewError(protocol.KindIO, "open "+path, err)
	}
	return &lineProbe{fd: fd}, nil
}

// check returns an error unless the line runs at baud.
func (lp *lineProbe) check(baud int) error {
	tio, err := unix.IoctlGetTermios(lp.fd, unix.TCGETS)
	if err != nil {
		return protocol.NewError(protocol.KindIO, "read line speed", err)
	}
	return checkLineSpeed(tio.Cflag, baud)
}

func (lp *lineProbe) Close() error {
	return unix.Close(lp.fd)
}

// checkLineSpeed compares the speed bits of cflag with baud. Speeds
// outside the table are set through termios2 and show up as BOTHER.
func checkLineSpeed(cflag uint32, baud int) error {
	want, ok := baudTable[baud]
	if !ok {
		want = unix.BOTHER
	}
	if got := cflag & unix.CBAUD; got != want {
		return protocol.Errorf(protocol.KindUnsupportedBaud, "verify baud rate",
			"driver speed bits %#o, want %#o for %d", got, want, baud)
	}
	return nil
}
