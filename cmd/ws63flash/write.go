package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-ws63flash/flasher"
	"github.com/moffa90/go-ws63flash/internal/cli"
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write TTY LOADERBOOT[@ADDR] BIN@ADDR...",
	Short: "Write raw images",
	Long: `Write standalone images. The first file is sent as the loaderboot;
every other one needs its flash address as FILE@ADDR (hex). Intel HEX
files carry their own addresses.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := flasher.LoadTargets(args[1:])
		if err != nil {
			return err
		}
		cli.PrintTable(os.Stdout, cli.TargetRows(targets))

		port, f, err := openFlasher(args[0])
		if err != nil {
			return err
		}
		defer port.Close()

		ctx, cancel := signalContext()
		defer cancel()
		return f.Write(ctx, targets)
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
