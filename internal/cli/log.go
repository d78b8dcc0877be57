package cli

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/moffa90/go-ws63flash/flasher"
)

// SetupLogging points glog at stderr with the given verbosity. Verbosity
// comes from the command's own -v count rather than glog's flags.
func SetupLogging(verbosity int) error {
	if !flag.CommandLine.Parsed() {
		if err := flag.CommandLine.Parse(nil); err != nil {
			return err
		}
	}
	if err := flag.Set("logtostderr", "true"); err != nil {
		return err
	}
	return flag.Set("v", strconv.Itoa(verbosity))
}

// Logger adapts glog to flasher.Logger: Debug logs at V(2), Info at V(1).
type Logger struct{}

var _ flasher.Logger = Logger{}

func (Logger) Debug(msg string, keysAndValues ...interface{}) {
	if glog.V(2) {
		glog.InfoDepth(1, format(msg, keysAndValues))
	}
}

func (Logger) Info(msg string, keysAndValues ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, format(msg, keysAndValues))
	}
}

func (Logger) Error(msg string, keysAndValues ...interface{}) {
	glog.ErrorDepth(1, format(msg, keysAndValues))
}

// format renders msg followed by key=value pairs.
func format(msg string, keysAndValues []interface{}) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, "%v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, "%v", keysAndValues[i])
		}
	}
	return b.String()
}
