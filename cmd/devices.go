package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/realcatgirly/pomolight/device"
	"github.com/spf13/cobra"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List attached lights and USB serial ports",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			infos, err := device.List()
			if err != nil {
				return err
			}
			w := c.OutOrStdout()
			if format != "text" {
				return writeStructured(w, format, infos)
			}
			if len(infos) == 0 {
				_, err := fmt.Fprintln(w, "no devices found")
				return err
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DRIVER\tPATH\tVID:PID\tPRODUCT")
			for _, info := range infos {
				driver := info.Driver
				if driver == "" {
					driver = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s:%s\t%s\n", driver, info.Path, info.VID, info.PID, info.Product)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml)")
	return cmd
}
