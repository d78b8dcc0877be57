package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-ws63flash/fwpkg"
	"github.com/moffa90/go-ws63flash/internal/cli"
)

// flashCmd represents the flash command
var flashCmd = &cobra.Command{
	Use:   "flash TTY FWPKG [BIN...]",
	Short: "Flash a firmware package",
	Long: `Flash the partitions of a firmware package. With BIN names only
those partitions are written; the loaderboot is always sent.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := fwpkg.Open(args[1])
		if err != nil {
			return err
		}
		defer img.Close()

		names := args[2:]
		cli.PrintTable(os.Stdout, cli.PartitionRows(img.Firmware, names))

		port, f, err := openFlasher(args[0])
		if err != nil {
			return err
		}
		defer port.Close()

		ctx, cancel := signalContext()
		defer cancel()
		return f.Flash(ctx, img, names)
	},
}

func init() {
	rootCmd.AddCommand(flashCmd)
}
