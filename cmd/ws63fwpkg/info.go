package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"zappem.net/pub/debug/xcrc32"

	"github.com/moffa90/go-ws63flash/fwpkg"
)

const infoRule = "+--+-------------------------------+----------+----------+----------+----------+-+----------+"

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info FWPKG",
	Short: "Show the partition table of a firmware package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := fwpkg.Open(args[0])
		if err != nil {
			return err
		}
		defer img.Close()

		fmt.Printf("%s: %d partitions, crc 0x%04x, total length %s (file %s)\n",
			img.Path(), len(img.Partitions), img.Checksum, hexSize(img.TotalLength), hexSize(uint32(img.Size())))

		fmt.Println(infoRule)
		fmt.Printf("|# |%-31s|%-10s|%-10s|%-10s|%-10s|T|%-10s|\n", "NAME", "OFFSET", "LENGTH", "BURN ADDR", "BURN SIZE", "CRC32")
		fmt.Println(infoRule)
		for i, p := range img.Partitions {
			data, err := img.ReadPartition(p)
			if err != nil {
				return err
			}
			_, crc := xcrc32.NewCRC32(data)
			fmt.Printf("|%2d|%-31s|%s|%s|%s|%s|%d|0x%08x|\n",
				i, p.Name, hexSize(p.Offset), hexSize(p.Length), hexSize(p.BurnAddress), hexSize(p.BurnSize), p.Kind, crc)
		}
		fmt.Println(infoRule)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
