// Command ws63flash flashes WS63 devices over a serial port.
//
//	ws63flash flash /dev/ttyUSB0 ws63-liteos-app_all.fwpkg
//	ws63flash write /dev/ttyUSB0 loaderboot.bin app.bin@0x230000
//	ws63flash erase /dev/ttyUSB0 ws63-liteos-app_all.fwpkg
package main

import (
	"os"

	"github.com/golang/glog"
)

func main() {
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
