// Command ws63fwpkg inspects and edits WS63 firmware packages.
//
//	ws63fwpkg info ws63-liteos-app_all.fwpkg
//	ws63fwpkg inject ws63-liteos-app_all.fwpkg extra.bin@0x3c0000 -o out.fwpkg
//	ws63fwpkg extract ws63-liteos-app_all.fwpkg app.bin --hex -o app.hex
package main

import (
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-ws63flash/internal/cli"
)

var verbosity int

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "ws63fwpkg",
	Short:        "Firmware package utility for WS63",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cli.SetupLogging(verbosity)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "verbose output")
}

func main() {
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
