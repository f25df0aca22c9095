// Package render turns source documents into the per-page device bitmaps
// the raster encoder consumes: it scales pages to the label's printable
// grid, positions them in the device pixel row and quantizes them to the
// printer's palette.
package render

import (
	"fmt"
	"image"
	"image/color"
)

// RGB is a palette color with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

func (c RGB) toColor() color.Color {
	return color.RGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: 0xFF,
	}
}

// DefaultPalette is white-then-black; palette index 0 is always the
// background.
var DefaultPalette = []RGB{{1, 1, 1}, {0, 0, 0}}

// TwoColorPalette adds red for black/red/white media.
var TwoColorPalette = []RGB{{1, 1, 1}, {0, 0, 0}, {1, 0, 0}}

// Dithering selects the quantization mode.
type Dithering int

const (
	// DitherFloydSteinberg is error-diffusion dithering, the default.
	DitherFloydSteinberg Dithering = iota
	// DitherOrdered is Bayer ordered dithering.
	DitherOrdered
	// DitherNone picks the nearest palette entry per pixel.
	DitherNone
)

// Options configures one render job. Validate must pass before any
// render call.
type Options struct {
	// Rotate is the explicit rotation in degrees: 0, 90, 180 or 270.
	// Ignored while AutoRotate is set.
	Rotate int

	// AutoRotate rotates a page 90 degrees when that wastes less of the
	// printable area.
	AutoRotate bool

	// AllowScaleRaster is carried with the options but not read by the
	// Renderer, which always resizes every source to fit the printable
	// area.
	AllowScaleRaster bool

	// AllowScalePhysicalDims is carried with the options but not read by
	// the Renderer, which always fits the source's pixel size and does
	// not preserve its physical size.
	AllowScalePhysicalDims bool

	// PrintablePixels is the printable area. Y is 0 for endless labels.
	PrintablePixels image.Point

	// DevicePixels is the full device area. Y is 0 for endless labels.
	DevicePixels image.Point

	// DeviceOffset positions the printable area on the device canvas.
	DeviceOffset image.Point

	// PaddingBottom adds blank rows at the bottom for endless labels.
	PaddingBottom int

	// DPI is the device resolution, default 300. Validate checks it;
	// the Renderer does not read it.
	DPI float64

	Dithering Dithering

	// Palette is an ordered list of 2 or 3 colors; index 0 is the
	// background.
	Palette []RGB
}

// IsEndless reports whether the options describe continuous tape.
func (o *Options) IsEndless() bool {
	return o.PrintablePixels.Y == 0
}

// Validate checks the options for internal consistency.
func (o *Options) Validate() error {
	if o.DPI == 0 {
		o.DPI = 300
	}
	if len(o.Palette) == 0 {
		o.Palette = DefaultPalette
	}

	switch {
	case o.PrintablePixels.X <= 0 || o.PrintablePixels.Y < 0:
		return fmt.Errorf("invalid printable pixels %v", o.PrintablePixels)
	case o.DevicePixels.X <= 0 || o.DevicePixels.Y < 0:
		return fmt.Errorf("invalid device pixels %v", o.DevicePixels)
	case o.PrintablePixels.X > o.DevicePixels.X,
		o.PrintablePixels.Y > o.DevicePixels.Y:
		return fmt.Errorf("printable pixels %v exceed device pixels %v",
			o.PrintablePixels, o.DevicePixels)
	case o.IsEndless() && o.DevicePixels.Y != 0:
		return fmt.Errorf("endless label with fixed device height %d", o.DevicePixels.Y)
	case o.PaddingBottom < 0:
		return fmt.Errorf("negative bottom padding %d", o.PaddingBottom)
	case o.DPI <= 0:
		return fmt.Errorf("non-positive dpi %v", o.DPI)
	}

	switch o.Rotate {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("unsupported rotation %d", o.Rotate)
	}

	if n := len(o.Palette); n < 2 || n > 3 {
		return fmt.Errorf("palette must have 2 or 3 colors, got %d", n)
	}
	for _, c := range o.Palette {
		if c.R < 0 || c.R > 1 || c.G < 0 || c.G > 1 || c.B < 0 || c.B > 1 {
			return fmt.Errorf("palette color %v outside [0,1]", c)
		}
	}
	return nil
}
