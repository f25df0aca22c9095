package render

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
)

// BitmapSource is a single raster image loaded from a file or supplied
// directly.
type BitmapSource struct {
	// Path is the image file to load. Ignored when Image is set.
	Path string

	// Image is an already-decoded image.
	Image image.Image

	img image.Image
	dpi float64
}

func (s *BitmapSource) Open() error {
	if s.Image != nil {
		s.img = s.Image
		return nil
	}

	img, err := imaging.Open(s.Path)
	if err != nil {
		return fmt.Errorf("opening bitmap %s: %w", s.Path, err)
	}
	s.img = img
	s.dpi = pngDPI(s.Path)
	return nil
}

func (s *BitmapSource) Close() error {
	s.img = nil
	return nil
}

func (s *BitmapSource) PageCount() int { return 1 }

func (s *BitmapSource) PageSize(i int) (PageSize, error) {
	b := s.img.Bounds()
	return PageSize{W: b.Dx(), H: b.Dy(), DPI: s.dpi}, nil
}

func (s *BitmapSource) RenderPage(i int, size PageSize) (image.Image, error) {
	resized := imaging.Resize(s.img, size.W, size.H, imaging.Lanczos)

	// Flatten onto white so transparent sources do not quantize to
	// black.
	canvas := imaging.New(size.W, size.H, color.White)
	return imaging.Overlay(canvas, resized, image.Pt(0, 0), 1.0), nil
}

// pngDPI extracts the resolution from a PNG pHYs chunk, if the file is a
// PNG carrying one in meters. Returns 0 when unknown.
func pngDPI(path string) float64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	var sig [8]byte
	if _, err := f.Read(sig[:]); err != nil || string(sig[:]) != "\x89PNG\r\n\x1a\n" {
		return 0
	}

	var head [8]byte
	for {
		if _, err := f.Read(head[:]); err != nil {
			return 0
		}
		length := binary.BigEndian.Uint32(head[:4])
		typ := string(head[4:8])
		if typ == "IDAT" || typ == "IEND" {
			return 0
		}
		if typ != "pHYs" {
			if _, err := f.Seek(int64(length)+4, 1); err != nil {
				return 0
			}
			continue
		}

		var phys [9]byte
		if _, err := f.Read(phys[:]); err != nil {
			return 0
		}
		if phys[8] != 1 { // unit must be meters
			return 0
		}
		perMeter := binary.BigEndian.Uint32(phys[:4])
		return float64(perMeter) * 0.0254
	}
}
