// Package serial adapts a UART to protocol.Channel.
//
// Ports are opened at 115200 8N1, the speed the WS63 boot ROM listens at.
// SetBaudRate checks the requested speed against the platform table
// before reconfiguring the line:
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    return err
//	}
//	defer port.Close()
//
//	if err := port.SetBaudRate(921600); err != nil {
//	    return err
//	}
package serial
