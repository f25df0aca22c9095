package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"go.afab.re/brotherlabel"
	"go.afab.re/brotherlabel/backend"
	"go.afab.re/brotherlabel/device"
	"go.afab.re/brotherlabel/render"
)

var vectorExts = map[string]bool{".pdf": true, ".ps": true, ".eps": true}

func printCmd() *cobra.Command {
	var (
		modelName   string
		labelID     string
		backendName string
		deviceURL   string

		file    string
		text    string
		code    string
		font    string
		rotate  string
		noCut   bool
		noDith  bool
		ordered bool
		lowQ    bool
		noComp  bool
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Render a label and send it to a printer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exactlyOne(file != "", text != "", code != ""); err != nil {
				return err
			}

			model, err := device.ModelByName(
				envDefault("BROTHER_LABEL_MODEL", modelName))
			if err != nil {
				return err
			}
			label, err := device.LabelByID(model, labelID)
			if err != nil {
				return err
			}

			spool, err := brotherlabel.NewSpool(model, label, nil)
			if err != nil {
				return err
			}
			defer spool.Close()

			spool.AutoCut = !noCut
			spool.HighQuality = !lowQ
			spool.Compress = !noComp
			switch {
			case noDith:
				spool.Dithering = render.DitherNone
			case ordered:
				spool.Dithering = render.DitherOrdered
			}
			if rotate != "auto" {
				var deg int
				if _, err := fmt.Sscanf(rotate, "%d", &deg); err != nil {
					return fmt.Errorf("bad rotation %q", rotate)
				}
				spool.AutoRotate = false
				spool.Rotate = deg
			}

			src, name, err := resolveSource(spool, file, text, code, font)
			if err != nil {
				return err
			}
			if err := spool.Render(src, name); err != nil {
				return err
			}
			if err := spool.Finalize(); err != nil {
				return err
			}

			if preview {
				metas, err := spool.Preview()
				if err != nil {
					return err
				}
				for _, m := range metas {
					fmt.Printf("%s\t%.1fmm x %.1fmm\t%s\n",
						m.Name, m.LabelWidthMM, m.LabelHeightMM, m.ImagePath)
				}
			}

			url := envDefault("BROTHER_LABEL_DEVICE", deviceURL)
			if url == "" {
				return fmt.Errorf("no device given; use --device or BROTHER_LABEL_DEVICE")
			}
			be, err := backend.New(
				envDefault("BROTHER_LABEL_BACKEND", backendName), url)
			if err != nil {
				return err
			}

			res, err := spool.Print(be)
			if err != nil {
				return err
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("printer reported: %s", strings.Join(res.Errors, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelName, "model", "m", "", "printer model, e.g. QL-600")
	cmd.Flags().StringVarP(&labelID, "label", "l", "", "label identifier, e.g. 62 or DK-22205")
	cmd.Flags().StringVarP(&backendName, "backend", "b", "auto", "backend: usb, network, linux or file")
	cmd.Flags().StringVarP(&deviceURL, "device", "d", "", "device URL, e.g. usb://0x04f9:0x20c0 or tcp://10.0.0.5")
	cmd.Flags().StringVar(&file, "file", "", "print an image or PDF/PS document")
	cmd.Flags().StringVar(&text, "text", "", "print a text label")
	cmd.Flags().StringVar(&code, "barcode", "", "print a QR code label")
	cmd.Flags().StringVar(&font, "font", "sans-serif", "font query for text labels")
	cmd.Flags().StringVar(&rotate, "rotate", "auto", "rotation: auto, 0, 90, 180 or 270")
	cmd.Flags().BoolVar(&noCut, "no-cut", false, "do not cut after printing")
	cmd.Flags().BoolVar(&noDith, "no-dither", false, "threshold instead of dithering")
	cmd.Flags().BoolVar(&ordered, "ordered-dither", false, "use ordered (Bayer) dithering")
	cmd.Flags().BoolVar(&lowQ, "low-quality", false, "prefer speed over quality")
	cmd.Flags().BoolVar(&noComp, "no-compress", false, "send raw raster lines")
	cmd.Flags().BoolVar(&preview, "preview", false, "write preview PNGs and list them before printing")

	cmd.MarkFlagRequired("model")
	cmd.MarkFlagRequired("label")
	return cmd
}

func resolveSource(spool *brotherlabel.Spool, file, text, code, font string) (render.Source, string, error) {
	opts := spool.RenderOptions()
	minSize := opts.PrintablePixels

	switch {
	case text != "":
		return &render.TextSource{
			Text:      text,
			FontQuery: font,
			MinSize:   image.Pt(minSize.X, minSize.Y),
		}, fmt.Sprintf("Text %q", text), nil

	case code != "":
		return &render.BarcodeSource{
			Content: code,
			MinSize: image.Pt(minSize.X, minSize.X),
		}, fmt.Sprintf("Barcode %q", code), nil

	default:
		if _, err := os.Stat(file); err != nil {
			return nil, "", fmt.Errorf("source file %s: %w", file, err)
		}
		if vectorExts[strings.ToLower(filepath.Ext(file))] {
			return &render.VectorSource{Path: file},
				fmt.Sprintf("Document %q", filepath.Base(file)), nil
		}
		return &render.BitmapSource{Path: file},
			fmt.Sprintf("Bitmap %q", filepath.Base(file)), nil
	}
}
