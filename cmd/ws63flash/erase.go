package main

import (
	"github.com/spf13/cobra"

	"github.com/moffa90/go-ws63flash/flasher"
	"github.com/moffa90/go-ws63flash/fwpkg"
)

// eraseCmd represents the erase command
var eraseCmd = &cobra.Command{
	Use:   "erase TTY FWPKG",
	Short: "Erase the whole flash",
	Long: `Erase the whole flash using the loaderboot of a firmware package.
The transfer always runs at 115200 baud.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := fwpkg.Open(args[1])
		if err != nil {
			return err
		}
		defer img.Close()

		loader, err := flasher.LoaderTarget(img)
		if err != nil {
			return err
		}

		port, f, err := openFlasher(args[0])
		if err != nil {
			return err
		}
		defer port.Close()

		ctx, cancel := signalContext()
		defer cancel()
		return f.Erase(ctx, loader)
	},
}

func init() {
	rootCmd.AddCommand(eraseCmd)
}
