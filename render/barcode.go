package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// BarcodeSource renders a QR code as a single square page. The code is
// scaled to the page with whole-module precision so every module stays
// crisp after quantization.
type BarcodeSource struct {
	Content string

	// MinSize is the smallest page to produce; typically the label's
	// printable width on both axes.
	MinSize image.Point

	code barcode.Barcode
}

func (s *BarcodeSource) Open() error {
	if s.Content == "" {
		return fmt.Errorf("empty barcode content")
	}
	code, err := qr.Encode(s.Content, qr.H, qr.Auto)
	if err != nil {
		return fmt.Errorf("encoding barcode: %w", err)
	}
	s.code = code
	return nil
}

func (s *BarcodeSource) Close() error {
	s.code = nil
	return nil
}

func (s *BarcodeSource) PageCount() int { return 1 }

func (s *BarcodeSource) PageSize(i int) (PageSize, error) {
	side := s.MinSize.X
	if s.MinSize.Y > side {
		side = s.MinSize.Y
	}
	if native := s.code.Bounds().Dx(); side < native {
		side = native
	}
	return PageSize{W: side, H: side}, nil
}

func (s *BarcodeSource) RenderPage(i int, size PageSize) (image.Image, error) {
	side := size.W
	if size.H < side {
		side = size.H
	}

	scaled, err := barcode.Scale(s.code, side, side)
	if err != nil {
		return nil, fmt.Errorf("scaling barcode: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, size.W, size.H))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	target := image.Rect(0, 0, side, side).
		Add(image.Pt((size.W-side)/2, (size.H-side)/2))
	draw.Draw(img, target, scaled, scaled.Bounds().Min, draw.Src)
	return img, nil
}
