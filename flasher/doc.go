// Package flasher drives WS63 flashing operations over a serial channel.
//
// # Overview
//
// Every operation follows the same staging:
//   - Handshake with the boot ROM until it answers (10 s)
//   - Switch baud rate, either in the handshake or later through the loaderboot
//   - Send the loaderboot over YMODEM and wait for it to announce itself
//   - For each image: download command, acknowledgement, YMODEM transfer
//   - Reset the device
//
// The channel is returned to 115200 baud whether the operation succeeds
// or not.
//
// # Basic Usage
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	img, err := fwpkg.Open("ws63-liteos-app_all.fwpkg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Close()
//
//	f := flasher.New(port, flasher.WithBaudRate(921600))
//	if err := f.Flash(context.Background(), img, nil); err != nil {
//	    log.Fatal(err)
//	}
//
// # Raw Images
//
// Write burns files given as FILE@ADDR; the first one is the loaderboot:
//
//	targets, err := flasher.LoadTargets([]string{"loaderboot.bin", "app.bin@0x230000"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = f.Write(ctx, targets)
//
// Intel HEX files carry their own addresses and may omit @ADDR.
//
// # Progress Tracking
//
//	f := flasher.New(port,
//	    flasher.WithProgressCallback(func(p flasher.Progress) {
//	        fmt.Printf("[%s] %s %.1f%%\n", p.Phase, p.Target, p.Percentage)
//	    }),
//	)
//
// # Error Handling
//
// Link failures carry a protocol.ErrorKind:
//
//	err := f.Flash(ctx, img, nil)
//	if protocol.IsTimeout(err) {
//	    log.Println("device not answering; is it in download mode?")
//	}
//
//	var nf *flasher.PartitionNotFoundError
//	if errors.As(err, &nf) {
//	    log.Printf("no partition %s", nf.Name)
//	}
package flasher
