// Command ws63sign wraps raw machine code in the WS63 signed image header.
//
//	ws63sign app.bin -o app.signed
//	cat app.bin | ws63sign - -o app.signed
//	ws63sign --verify app.signed
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-ws63flash/internal/cli"
	"github.com/moffa90/go-ws63flash/sign"
)

var (
	output    string
	verify    bool
	verbosity int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "ws63sign INPUT [OUTPUT]",
	Short:        "Machine code signing utility for WS63",
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cli.SetupLogging(verbosity)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if verify {
			return verifyImage(args[0])
		}

		out := output
		if len(args) == 2 {
			out = args[1]
		}
		return signImage(args[0], out)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&output, "out", "o", "a.signed", "output file")
	rootCmd.Flags().BoolVar(&verify, "verify", false, "check a signed image instead of producing one")
	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v", "verbose output")
}

func signImage(in, out string) error {
	var r io.Reader = os.Stdin
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	w, err := os.Create(out)
	if err != nil {
		return err
	}

	n, err := sign.Encode(w, r)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	glog.V(1).Infof("wrote %s (%d bytes)", out, n)
	return nil
}

func verifyImage(in string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	h, err := sign.Verify(data)
	if err != nil {
		return err
	}
	fmt.Printf("%s: code at 0x%x, 0x%x bytes, sha256 %x\n", in, h.CodeAddress, h.CodeLength, h.CodeHash)
	return nil
}

func main() {
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
