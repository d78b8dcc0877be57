package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"zappem.net/pub/debug/xxd"

	"github.com/moffa90/go-ws63flash/flasher"
	"github.com/moffa90/go-ws63flash/internal/cli"
	"github.com/moffa90/go-ws63flash/serial"
)

var (
	baudRate  int
	lateBaud  bool
	verbosity int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "ws63flash",
	Short:        "Flash WS63 devices over a serial port",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := serial.ValidateBaudRate(baudRate); err != nil {
			return err
		}
		return cli.SetupLogging(verbosity)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", serial.DefaultBaudRate, "baud rate to transfer at")
	rootCmd.PersistentFlags().BoolVar(&lateBaud, "late-baud", false, "switch baud rate after the loaderboot starts")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "verbose output; repeat to dump frames")
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// openFlasher opens the serial port and builds a Flasher from the flags.
func openFlasher(path string) (*serial.Port, *flasher.Flasher, error) {
	port, err := serial.Open(path)
	if err != nil {
		return nil, nil, err
	}

	opts := []flasher.Option{
		flasher.WithBaudRate(baudRate),
		flasher.WithLateBaud(lateBaud),
		flasher.WithLogger(cli.Logger{}),
	}
	if verbosity > 0 {
		opts = append(opts,
			flasher.WithProgressCallback(cli.NewProgress().Callback()),
			flasher.WithEcho(os.Stdout),
		)
	}
	if verbosity > 1 {
		opts = append(opts, flasher.WithFrameTrace(func(frame []byte) {
			fmt.Println(">")
			xxd.Print(0, frame)
		}))
	}

	return port, flasher.New(port, opts...), nil
}
