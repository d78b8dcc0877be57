package main

import (
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-ws63flash/flasher"
	"github.com/moffa90/go-ws63flash/fwpkg"
)

var injectOut string

// injectCmd represents the inject command
var injectCmd = &cobra.Command{
	Use:   "inject FWPKG BIN@ADDR...",
	Short: "Add binaries to a firmware package",
	Long: `Write a copy of FWPKG with each BIN appended as an ordinary partition
burnt at ADDR (hex). The source package is never modified.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if injectOut != "-" && samePath(injectOut, args[0]) {
			return fmt.Errorf("output %s would overwrite the source package", injectOut)
		}

		var bins []fwpkg.Bin
		for _, arg := range args[1:] {
			targets, err := flasher.ParseTarget(arg, true)
			if err != nil {
				return err
			}
			for _, t := range targets {
				bins = append(bins, fwpkg.Bin{Name: t.Name, Address: t.Address, Data: t.Data})
			}
		}

		img, err := fwpkg.Open(args[0])
		if err != nil {
			return err
		}
		defer img.Close()

		return writeOutput(injectOut, func(w io.Writer) error {
			fw, err := fwpkg.Inject(w, img.ReaderAt(), img.Size(), img.Firmware, bins)
			if err != nil {
				return err
			}
			glog.V(1).Infof("injected %d binaries, %d partitions, total 0x%x bytes",
				len(bins), len(fw.Partitions), fw.TotalLength)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(injectCmd)
	injectCmd.Flags().StringVarP(&injectOut, "out", "o", "-", "output file, - for stdout")
}
