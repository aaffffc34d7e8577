/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/allbin/serialterm"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  serialterm info /dev/ttyUSB0
  serialterm info /dev/ttyACM0

For USB devices, this displays vendor/product IDs, serial numbers, interface
numbers, and other USB-specific metadata extracted from sysfs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := serial.GetPortInfo(args[0])
		if err != nil {
			return fmt.Errorf("failed to get port info: %w", err)
		}
		printPortInfo(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printPortInfo(w io.Writer, info *serial.PortInfo) {
	fmt.Fprintf(w, "Port Information: %s\n\n", info.Path)
	fmt.Fprintf(w, "  Name:        %s\n", info.Name)
	fmt.Fprintf(w, "  Description: %s\n", info.Description)
	fmt.Fprintf(w, "  Type:        %s\n", getPortType(info.Name))

	if info.VendorID == "" && info.ProductID == "" {
		return
	}

	fmt.Fprintln(w, "\nUSB Device Information:")
	fields := []struct{ label, value string }{
		{"Vendor ID", info.VendorID},
		{"Product ID", info.ProductID},
		{"Serial", info.SerialNumber},
		{"Interface", info.InterfaceNumber},
		{"Bus", info.BusNumber},
		{"Device", info.DeviceNumber},
		{"Manufacturer", info.Manufacturer},
		{"Product", info.Product},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(w, "  %-13s %s\n", f.label+":", f.value)
		}
	}
}
