package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.afab.re/brotherlabel/raster"
)

func analyzeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Reconstruct label images from a captured raster stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rd, err := raster.NewReader(f, nil)
			if err != nil {
				return err
			}
			pages, err := rd.Analyze()
			if err != nil {
				return err
			}

			names, err := raster.WritePNGs(pages, out)
			if err != nil {
				return err
			}
			for i, name := range names {
				p := pages[i]
				fmt.Printf("%s\t%dx%d\tmedia %dmm", name,
					p.Image.Bounds().Dx(), p.Image.Bounds().Dy(), p.MediaWidthMM)
				if p.MediaLengthMM != 0 {
					fmt.Printf(" x %dmm", p.MediaLengthMM)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "label%04d.png",
		"output filename template with a counter verb")
	return cmd
}
