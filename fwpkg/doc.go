// Package fwpkg reads, writes and extends WS63 .fwpkg firmware containers.
//
// # Container Format
//
// A container is a header, a partition table and the partition payloads,
// all little-endian:
//
//	+----------------------------------------------+
//	| MAGIC(4) CRC(2) COUNT(2) TOTAL_LEN(4)        |  header, 12 bytes
//	+----------------------------------------------+
//	| NAME(32) OFFSET(4) LENGTH(4) BURN_ADDR(4)    |  one 52-byte entry
//	| BURN_SIZE(4) KIND(4)                         |  per partition
//	+----------------------------------------------+
//	| payloads ...                                 |
//	+----------------------------------------------+
//
// MAGIC is EF BE AD DE on disk. CRC is CRC-16/XMODEM over COUNT through
// the end of the table. OFFSET is absolute within the file. Exactly one
// partition has KIND 0, the loaderboot that the ROM runs first.
//
// # Usage
//
// Open a container and stream a partition:
//
//	img, err := fwpkg.Open("ws63-liteos-app_all.fwpkg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Close()
//
//	lb, err := img.LoaderBoot()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, err := img.ReadPartition(lb)
//
// Append standalone binaries to a container:
//
//	out, err := fwpkg.Inject(w, src, size, img.Firmware, []fwpkg.Bin{
//	    {Name: "app.bin", Address: 0x230000, Data: app},
//	})
package fwpkg
