package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go.afab.re/brotherlabel/backend"
	"go.afab.re/brotherlabel/device"
)

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported printer models",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFAMILY\tUSB ID\tROW\tCUT\tCOMPRESS\tTWO-COLOR")
			for i := range device.Models {
				m := &device.Models[i]
				usb := "-"
				if m.USBProductID != 0 {
					usb = fmt.Sprintf("%04x:%04x", m.USBVendorID, m.USBProductID)
				}
				fmt.Fprintf(w, "%s\t%v\t%s\t%dpx\t%v\t%v\t%v\n",
					m.Name, m.Family, usb, m.PinsPerRow(),
					m.SupportsCutting, m.SupportsCompression, m.SupportsTwoColor)
			}
			return w.Flush()
		},
	}
}

func labelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels MODEL",
		Short: "List the labels a model accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := device.ModelByName(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tALIASES\tNAME\tPRINTABLE")
			labels := m.Labels()
			for i := range labels {
				l := &labels[i]
				printable := fmt.Sprintf("%dpx", l.DotsPrintable.W)
				if l.DotsPrintable.L != 0 {
					printable = fmt.Sprintf("%dx%dpx", l.DotsPrintable.W, l.DotsPrintable.L)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					l.ID(), strings.Join(l.Identifiers[1:], ","), l.Name(), printable)
			}
			return w.Flush()
		},
	}
}

func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List attached label printers",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := backend.Discover(nil)
			if len(infos) == 0 {
				fmt.Println("no label printers found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "URL\tMODEL\tSERIAL\tSUPPORTED")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n",
					info.DeviceURL, info.Model, info.Serial, info.Supported)
			}
			return w.Flush()
		},
	}
}
