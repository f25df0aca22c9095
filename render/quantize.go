package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"
)

// quantize maps img onto the palette, producing indexed pixels. With a
// three-color palette the red plane is split off first by hue so
// dithering never mixes red into the monochrome content.
func quantize(img image.Image, palette []RGB, mode Dithering) (*image.Paletted, error) {
	if len(palette) == 3 {
		return quantizeTwoColor(img, palette, mode)
	}
	return quantizeMono(img, palette, mode)
}

func quantizeMono(img image.Image, palette []RGB, mode Dithering) (*image.Paletted, error) {
	colors := make([]color.Color, len(palette))
	for i, c := range palette {
		colors[i] = c.toColor()
	}

	switch mode {
	case DitherNone:
		return threshold(img, colors), nil
	case DitherFloydSteinberg, DitherOrdered:
		d := dither.NewDitherer(colors)
		if mode == DitherOrdered {
			d.Mapper = dither.Bayer(8, 8, 1.0)
		} else {
			d.Matrix = dither.FloydSteinberg
		}
		return d.DitherPaletted(img), nil
	default:
		return nil, fmt.Errorf("unknown dithering mode %d", mode)
	}
}

// quantizeTwoColor separates pixels whose hue lies near red with
// sufficient saturation into the red plane; the remainder quantizes on
// the two-entry black/white palette.
func quantizeTwoColor(img image.Image, palette []RGB, mode Dithering) (*image.Paletted, error) {
	bounds := img.Bounds()

	redMask := make([]bool, bounds.Dx()*bounds.Dy())
	masked := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if isRed(c) {
				redMask[(y-bounds.Min.Y)*bounds.Dx()+(x-bounds.Min.X)] = true
				// Red pixels become background for the monochrome pass.
				c = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
			}
			masked.SetRGBA(x, y, c)
		}
	}

	mono, err := quantizeMono(masked, palette[:2], mode)
	if err != nil {
		return nil, err
	}

	colors := make(color.Palette, len(palette))
	for i, c := range palette {
		colors[i] = c.toColor()
	}
	out := image.NewPaletted(bounds, colors)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			idx := mono.ColorIndexAt(bounds.Min.X+x, bounds.Min.Y+y)
			if redMask[y*bounds.Dx()+x] {
				idx = 2
			}
			out.SetColorIndex(bounds.Min.X+x, bounds.Min.Y+y, idx)
		}
	}
	return out, nil
}

// isRed classifies a pixel as belonging to the red plane: hue within 30
// degrees of red, with enough saturation and value to be a printed color
// rather than noise or shadow.
func isRed(c color.RGBA) bool {
	h, s, v := rgbToHSV(c)
	return (h <= 30 || h >= 330) && s >= 0.25 && v >= 0.25
}

func rgbToHSV(c color.RGBA) (h, s, v float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max

	d := max - min
	if max > 0 {
		s = d / max
	}
	if d == 0 {
		return 0, s, v
	}

	switch max {
	case r:
		h = 60 * math.Mod((g-b)/d, 6)
	case g:
		h = 60 * ((b-r)/d + 2)
	default:
		h = 60 * ((r-g)/d + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// threshold assigns each pixel its nearest palette entry by Euclidean
// distance in linear sRGB.
func threshold(img image.Image, palette color.Palette) *image.Paletted {
	bounds := img.Bounds()
	out := image.NewPaletted(bounds, palette)

	linear := make([][3]float64, len(palette))
	for i, p := range palette {
		c := color.RGBAModel.Convert(p).(color.RGBA)
		linear[i] = [3]float64{
			srgbToLinear(float64(c.R) / 255),
			srgbToLinear(float64(c.G) / 255),
			srgbToLinear(float64(c.B) / 255),
		}
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			pr := srgbToLinear(float64(c.R) / 255)
			pg := srgbToLinear(float64(c.G) / 255)
			pb := srgbToLinear(float64(c.B) / 255)

			best, bestDist := 0, math.Inf(1)
			for i, l := range linear {
				d := sq(pr-l[0]) + sq(pg-l[1]) + sq(pb-l[2])
				if d < bestDist {
					best, bestDist = i, d
				}
			}
			out.SetColorIndex(x, y, uint8(best))
		}
	}
	return out
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func sq(x float64) float64 { return x * x }
