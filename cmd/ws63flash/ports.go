package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-ws63flash/serial"
)

// portsCmd represents the ports command
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports and supported baud rates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serial.ListPorts()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		fmt.Print("Baud rates:")
		for _, b := range serial.SupportedBaudRates() {
			fmt.Printf(" %d", b)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
