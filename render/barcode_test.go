package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarcodeSource(t *testing.T) {
	src := &BarcodeSource{Content: "https://example.com", MinSize: image.Pt(300, 300)}
	require.NoError(t, src.Open())
	defer src.Close()

	size, err := src.PageSize(0)
	require.NoError(t, err)
	assert.Equal(t, 300, size.W)
	assert.Equal(t, size.W, size.H, "QR pages are square")

	img, err := src.RenderPage(0, PageSize{W: 300, H: 300})
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestBarcodeSourceEmpty(t *testing.T) {
	src := &BarcodeSource{}
	assert.Error(t, src.Open())
}

func TestBarcodeThroughPipeline(t *testing.T) {
	src := &BarcodeSource{Content: "box-0042", MinSize: image.Pt(300, 300)}
	r := Renderer{
		Source: src,
		Options: Options{
			PrintablePixels: image.Pt(306, 306),
			DevicePixels:    image.Pt(342, 342),
			DeviceOffset:    image.Pt(6, 0),
			Dithering:       DitherNone,
		},
	}

	pages, err := r.RenderAll()
	require.NoError(t, err)
	require.Len(t, pages, 1)

	got := pages[0]
	assert.Equal(t, 342, got.Bounds().Dx())
	assert.Equal(t, 342, got.Bounds().Dy())

	// A QR code quantizes to both palette entries.
	counts := [2]int{}
	b := got.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			counts[got.ColorIndexAt(x, y)]++
		}
	}
	assert.Positive(t, counts[0])
	assert.Positive(t, counts[1])
}
