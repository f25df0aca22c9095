package render

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSource is a solid-color source that records the size it was asked
// to render at.
type testSource struct {
	w, h  int
	dpi   float64
	fill  color.Color
	asked []PageSize
}

func (s *testSource) Open() error    { return nil }
func (s *testSource) Close() error   { return nil }
func (s *testSource) PageCount() int { return 1 }

func (s *testSource) PageSize(i int) (PageSize, error) {
	return PageSize{W: s.w, H: s.h, DPI: s.dpi}, nil
}

func (s *testSource) RenderPage(i int, size PageSize) (image.Image, error) {
	s.asked = append(s.asked, size)
	img := image.NewRGBA(image.Rect(0, 0, size.W, size.H))
	fill := s.fill
	if fill == nil {
		fill = color.White
	}
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			img.Set(x, y, fill)
		}
	}
	return img, nil
}

func TestValidate(t *testing.T) {
	valid := Options{
		PrintablePixels: image.Pt(696, 0),
		DevicePixels:    image.Pt(720, 0),
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, 300.0, valid.DPI, "default dpi")
	assert.Equal(t, DefaultPalette, valid.Palette, "default palette")

	cases := []Options{
		{PrintablePixels: image.Pt(0, 0), DevicePixels: image.Pt(720, 0)},
		{PrintablePixels: image.Pt(730, 0), DevicePixels: image.Pt(720, 0)},
		{PrintablePixels: image.Pt(696, 0), DevicePixels: image.Pt(720, 100)},
		{PrintablePixels: image.Pt(696, 100), DevicePixels: image.Pt(720, 90)},
		{PrintablePixels: image.Pt(696, 0), DevicePixels: image.Pt(720, 0), Rotate: 45},
		{PrintablePixels: image.Pt(696, 0), DevicePixels: image.Pt(720, 0), PaddingBottom: -1},
		{PrintablePixels: image.Pt(696, 0), DevicePixels: image.Pt(720, 0),
			Palette: []RGB{{0, 0, 0}}},
		{PrintablePixels: image.Pt(696, 0), DevicePixels: image.Pt(720, 0),
			Palette: []RGB{{0, 0, 0}, {2, 0, 0}}},
	}
	for i, o := range cases {
		assert.Error(t, o.Validate(), "case %d", i)
	}
}

// Endless labels: output width is the device width, height is the scaled
// content height plus the bottom padding.
func TestRenderEndlessGeometry(t *testing.T) {
	src := &testSource{w: 348, h: 150}
	r := Renderer{
		Source: src,
		Options: Options{
			PrintablePixels: image.Pt(696, 0),
			DevicePixels:    image.Pt(720, 0),
			DeviceOffset:    image.Pt(12, 0),
			PaddingBottom:   20,
			AutoRotate:      true,
		},
	}

	pages, err := r.RenderAll()
	require.NoError(t, err)
	require.Len(t, pages, 1)

	got := pages[0]
	assert.Equal(t, 720, got.Bounds().Dx())
	assert.Equal(t, 320, got.Bounds().Dy(), "300 content rows plus 20 padding")

	require.Len(t, src.asked, 1)
	assert.Equal(t, 696, src.asked[0].W)
	assert.Equal(t, 300, src.asked[0].H)
}

func TestRenderDieCutFit(t *testing.T) {
	src := &testSource{w: 100, h: 100}
	r := Renderer{
		Source: src,
		Options: Options{
			PrintablePixels: image.Pt(306, 425),
			DevicePixels:    image.Pt(720, 495),
			DeviceOffset:    image.Pt(6, 0),
		},
	}

	pages, err := r.RenderAll()
	require.NoError(t, err)

	got := pages[0]
	assert.Equal(t, 720, got.Bounds().Dx())
	assert.Equal(t, 495, got.Bounds().Dy(), "die-cut pages keep the device height")
	assert.Equal(t, 306, src.asked[0].W, "square content is width-bound")
	assert.Equal(t, 306, src.asked[0].H)
}

func TestAutoRotate(t *testing.T) {
	// A 2:1 landscape page on a tall label wastes less area rotated.
	r := Renderer{Options: Options{
		AutoRotate:      true,
		PrintablePixels: image.Pt(306, 425),
		DevicePixels:    image.Pt(342, 495),
	}}
	assert.Equal(t, 90, r.rotation(2.0))

	// A square page ties; the tie keeps it un-rotated.
	assert.Equal(t, 0, r.rotation(1.0))

	// A portrait page already fits best.
	assert.Equal(t, 0, r.rotation(0.5))

	// Endless tape always fills the width.
	endless := Renderer{Options: Options{
		AutoRotate:      true,
		PrintablePixels: image.Pt(696, 0),
		DevicePixels:    image.Pt(720, 0),
	}}
	assert.Equal(t, 0, endless.rotation(2.0))

	// Explicit rotation wins with auto-rotate off.
	explicit := Renderer{Options: Options{
		Rotate:          270,
		PrintablePixels: image.Pt(306, 425),
		DevicePixels:    image.Pt(342, 495),
	}}
	assert.Equal(t, 270, explicit.rotation(2.0))
}

// The composed canvas is background outside the printable area.
func TestComposeBackground(t *testing.T) {
	src := &testSource{w: 100, h: 100, fill: color.Black}
	r := Renderer{
		Source: src,
		Options: Options{
			PrintablePixels: image.Pt(306, 425),
			DevicePixels:    image.Pt(720, 495),
			DeviceOffset:    image.Pt(50, 10),
		},
	}

	pages, err := r.RenderAll()
	require.NoError(t, err)
	got := pages[0]

	assert.Equal(t, uint8(0), got.ColorIndexAt(0, 0), "left of offset is background")
	assert.Equal(t, uint8(0), got.ColorIndexAt(719, 494), "right side is background")
	assert.Equal(t, uint8(1), got.ColorIndexAt(51, 11), "content is black")
}

func TestQuantizeThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 0xF0})
	img.SetGray(1, 0, color.Gray{Y: 0x10})

	out, err := quantize(img, DefaultPalette, DitherNone)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.ColorIndexAt(0, 0), "light maps to white")
	assert.Equal(t, uint8(1), out.ColorIndexAt(1, 0), "dark maps to black")
}

func TestQuantizeDitherMixesMidtones(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: 0x80})
		}
	}

	for _, mode := range []Dithering{DitherFloydSteinberg, DitherOrdered} {
		out, err := quantize(img, DefaultPalette, mode)
		require.NoError(t, err)

		counts := [2]int{}
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				counts[out.ColorIndexAt(x, y)]++
			}
		}
		assert.Positive(t, counts[0], "mode %d produces white", mode)
		assert.Positive(t, counts[1], "mode %d produces black", mode)
	}
}

func TestQuantizeTwoColorRedSplit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) // white
	img.Set(1, 0, color.RGBA{0x00, 0x00, 0x00, 0xFF}) // black
	img.Set(2, 0, color.RGBA{0xE0, 0x10, 0x10, 0xFF}) // red
	img.Set(3, 0, color.RGBA{0x40, 0x40, 0x40, 0xFF}) // dark gray

	out, err := quantize(img, TwoColorPalette, DitherNone)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), out.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(1), out.ColorIndexAt(1, 0))
	assert.Equal(t, uint8(2), out.ColorIndexAt(2, 0))
	assert.Equal(t, uint8(1), out.ColorIndexAt(3, 0),
		"unsaturated darks belong to the black plane")
}

func TestIsRed(t *testing.T) {
	cases := []struct {
		c    color.RGBA
		want bool
	}{
		{color.RGBA{0xFF, 0x00, 0x00, 0xFF}, true},
		{color.RGBA{0xE0, 0x20, 0x30, 0xFF}, true},  // slightly off red
		{color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, false}, // white
		{color.RGBA{0x00, 0x00, 0x00, 0xFF}, false}, // black
		{color.RGBA{0x00, 0xFF, 0x00, 0xFF}, false}, // green
		{color.RGBA{0x30, 0x20, 0x20, 0xFF}, false}, // too dark
	}
	for _, c := range cases {
		assert.Equal(t, c.want, isRed(c.c), fmt.Sprintf("%v", c.c))
	}
}
