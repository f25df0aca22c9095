package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Renderer drives a Source through the geometry and quantization
// pipeline, producing one device bitmap per page.
type Renderer struct {
	Source  Source
	Options Options
	Log     *slog.Logger
}

func (r *Renderer) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// RenderAll renders every page of the source. Each result is a paletted
// image of exactly the device width; its height is the device height for
// die-cut labels, or the content height plus bottom padding for endless
// labels.
func (r *Renderer) RenderAll() ([]*image.Paletted, error) {
	if err := r.Options.Validate(); err != nil {
		return nil, fmt.Errorf("render options: %w", err)
	}

	if err := r.Source.Open(); err != nil {
		return nil, err
	}
	defer r.Source.Close()

	var pages []*image.Paletted
	for i := 0; i < r.Source.PageCount(); i++ {
		page, err := r.renderPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// fit returns the largest (w, h) with the given aspect ratio that fits
// the printable area. For endless labels only the width is bounded.
func (r *Renderer) fit(aspect float64) (int, int) {
	o := &r.Options
	w := float64(o.PrintablePixels.X)
	h := w / aspect
	if !o.IsEndless() && h > float64(o.PrintablePixels.Y) {
		h = float64(o.PrintablePixels.Y)
		w = h * aspect
		if w > float64(o.PrintablePixels.X) {
			h *= float64(o.PrintablePixels.X) / w
			w = float64(o.PrintablePixels.X)
		}
	}
	return int(w + 0.5), int(h + 0.5)
}

// rotation decides the rotation for a page with the given native aspect
// ratio. With auto-rotation the page is turned 90 degrees only when the
// un-rotated fit wastes more printable area; ties keep the page
// un-rotated. Endless labels always fill the full width, so auto-rotation
// never turns them.
func (r *Renderer) rotation(aspect float64) int {
	o := &r.Options
	if !o.AutoRotate {
		return o.Rotate
	}
	if o.IsEndless() {
		return 0
	}

	w0, h0 := r.fit(aspect)
	w90, h90 := r.fit(1 / aspect)
	if w90*h90 > w0*h0 {
		return 90
	}
	return 0
}

func (r *Renderer) renderPage(i int) (*image.Paletted, error) {
	o := &r.Options

	native, err := r.Source.PageSize(i)
	if err != nil {
		return nil, err
	}
	if native.W <= 0 || native.H <= 0 {
		return nil, fmt.Errorf("source reported page size %dx%d", native.W, native.H)
	}
	aspect := float64(native.W) / float64(native.H)

	// Decide orientation, then fit the rotated page to the printable
	// area.
	rotate := r.rotation(aspect)
	fitAspect := aspect
	if rotate == 90 || rotate == 270 {
		fitAspect = 1 / aspect
	}
	w, h := r.fit(fitAspect)

	// The source renders in its native orientation; the rotation is
	// applied afterwards.
	srcW, srcH := w, h
	if rotate == 90 || rotate == 270 {
		srcW, srcH = h, w
	}

	// Carry the physical resolution along so vector sources rasterize at
	// the right density.
	var dpi float64
	if native.DPI > 0 {
		dpi = native.DPI * float64(srcW) / float64(native.W)
	}

	r.logger().Debug("rendering page",
		"page", i+1, "native", fmt.Sprintf("%dx%d", native.W, native.H),
		"target", fmt.Sprintf("%dx%d", w, h), "rotate", rotate)

	img, err := r.Source.RenderPage(i, PageSize{W: srcW, H: srcH, DPI: dpi})
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() != srcW || b.Dy() != srcH {
		return nil, fmt.Errorf("source rendered %dx%d, want %dx%d",
			b.Dx(), b.Dy(), srcW, srcH)
	}

	switch rotate {
	case 90:
		img = imaging.Rotate270(img) // imaging rotates counter-clockwise
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate90(img)
	}

	quantized, err := quantize(img, o.Palette, o.Dithering)
	if err != nil {
		return nil, err
	}

	return r.compose(quantized, w, h), nil
}

// compose pastes the quantized page onto the device canvas at the
// configured offset. Pixels outside the printable area stay background.
func (r *Renderer) compose(page *image.Paletted, w, h int) *image.Paletted {
	o := &r.Options

	deviceH := o.DevicePixels.Y
	if o.IsEndless() {
		deviceH = h + o.PaddingBottom
	}

	palette := make(color.Palette, len(o.Palette))
	for i, c := range o.Palette {
		palette[i] = c.toColor()
	}
	canvas := image.NewPaletted(image.Rect(0, 0, o.DevicePixels.X, deviceH), palette)

	target := image.Rect(0, 0, w, h).Add(o.DeviceOffset)
	draw.Draw(canvas, target.Intersect(canvas.Bounds()), page, page.Bounds().Min, draw.Src)
	return canvas
}
