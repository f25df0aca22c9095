package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestTextSourceMeasure(t *testing.T) {
	src := &TextSource{Text: "Hello", FontData: goregular.TTF}
	require.NoError(t, src.Open())
	defer src.Close()

	size, err := src.PageSize(0)
	require.NoError(t, err)
	assert.Positive(t, size.W)
	assert.Positive(t, size.H)
	assert.Equal(t, 300.0, size.DPI)

	two := &TextSource{Text: "Hello\nWorld", FontData: goregular.TTF}
	require.NoError(t, two.Open())
	defer two.Close()

	twoSize, err := two.PageSize(0)
	require.NoError(t, err)
	assert.Equal(t, size.H*2-int(two.marginPt()/72*two.dpi()+0.5), twoSize.H,
		"two lines are exactly twice one line height")
}

func TestTextSourceMinSize(t *testing.T) {
	src := &TextSource{
		Text:     "Hi",
		FontData: goregular.TTF,
		MinSize:  image.Pt(696, 0),
	}
	require.NoError(t, src.Open())
	defer src.Close()

	size, err := src.PageSize(0)
	require.NoError(t, err)
	assert.Equal(t, 696, size.W, "page is at least the printable width")
}

func TestTextSourceRender(t *testing.T) {
	src := &TextSource{Text: "Hello", FontData: goregular.TTF}
	require.NoError(t, src.Open())
	defer src.Close()

	img, err := src.RenderPage(0, PageSize{W: 300, H: 80, DPI: 300})
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())

	dark := 0
	for y := 0; y < 80; y++ {
		for x := 0; x < 300; x++ {
			if g := color.GrayModel.Convert(img.At(x, y)).(color.Gray); g.Y < 0x80 {
				dark++
			}
		}
	}
	assert.Positive(t, dark, "rendered text must contain dark pixels")
}

func TestTextSourceMissingFont(t *testing.T) {
	src := &TextSource{
		Text:      "Hello",
		FontQuery: "sans-serif",
		Matcher: func(query string) (string, error) {
			return "", ErrExternalTool
		},
	}
	assert.ErrorIs(t, src.Open(), ErrExternalTool)
}
