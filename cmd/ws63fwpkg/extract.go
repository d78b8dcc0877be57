package main

import (
	"io"

	"github.com/marcinbor85/gohex"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-ws63flash/flasher"
	"github.com/moffa90/go-ws63flash/fwpkg"
)

var (
	extractOut string
	extractHex bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract FWPKG NAME",
	Short: "Extract one partition from a firmware package",
	Long: `Write the payload of partition NAME. With --hex the output is Intel HEX
placed at the partition's burn address.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := fwpkg.Open(args[0])
		if err != nil {
			return err
		}
		defer img.Close()

		p := img.Find(args[1])
		if p == nil {
			return &flasher.PartitionNotFoundError{Name: args[1]}
		}
		data, err := img.ReadPartition(p)
		if err != nil {
			return err
		}

		return writeOutput(extractOut, func(w io.Writer) error {
			if !extractHex {
				_, err := w.Write(data)
				return err
			}
			mem := gohex.NewMemory()
			if err := mem.AddBinary(p.BurnAddress, data); err != nil {
				return err
			}
			return mem.DumpIntelHex(w, 16)
		})
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "-", "output file, - for stdout")
	extractCmd.Flags().BoolVar(&extractHex, "hex", false, "write Intel HEX at the burn address")
}
