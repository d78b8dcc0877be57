package cli

import (
	"fmt"
	"io"

	"github.com/moffa90/go-ws63flash/flasher"
	"github.com/moffa90/go-ws63flash/fwpkg"
)

const tableRule = "+-+-------------------------------+----------+----------+-+"

// Row is one line of a partition table.
type Row struct {
	// Flag is '!' for the loaderboot, '*' for selected entries, ' ' otherwise
	Flag    byte
	Name    string
	Length  uint32
	Address uint32
	Kind    uint32
}

// PartitionRows lists the container's partitions, flagging the loaderboot
// and the ones selected by names.
func PartitionRows(fw *fwpkg.Firmware, names []string) []Row {
	rows := make([]Row, 0, len(fw.Partitions))
	for _, p := range fw.Partitions {
		flag := byte(' ')
		switch {
		case p.Kind == fwpkg.KindLoaderBoot:
			flag = '!'
		case flasher.Selected(p, names):
			flag = '*'
		}
		rows = append(rows, Row{Flag: flag, Name: p.Name, Length: p.Length, Address: p.BurnAddress, Kind: uint32(p.Kind)})
	}
	return rows
}

// TargetRows lists write targets; the first one is the loaderboot.
func TargetRows(targets []flasher.Target) []Row {
	rows := make([]Row, 0, len(targets))
	for i, t := range targets {
		row := Row{Flag: '*', Name: t.Name, Length: uint32(len(t.Data)), Address: t.Address, Kind: uint32(fwpkg.KindNormal)}
		if i == 0 {
			row.Flag = '!'
			row.Kind = uint32(fwpkg.KindLoaderBoot)
		}
		rows = append(rows, row)
	}
	return rows
}

// PrintTable writes rows as a boxed table.
func PrintTable(w io.Writer, rows []Row) {
	fmt.Fprintln(w, tableRule)
	fmt.Fprintln(w, "|F|BIN NAME                       |LENGTH    |BURN ADDR |T|")
	fmt.Fprintln(w, tableRule)
	for _, r := range rows {
		fmt.Fprintf(w, "|%c|%-31s|0x%08x|0x%08x|%d|\n", r.Flag, r.Name, r.Length, r.Address, r.Kind)
	}
	fmt.Fprintln(w, tableRule)
}
