package render

import (
	"errors"
	"image"
)

// ErrExternalTool is returned when a helper executable (the vector
// interpreter or the font matcher) is missing or fails.
var ErrExternalTool = errors.New("external tool failed")

// PageSize is a page extent in pixels, optionally tied to a physical
// resolution. A zero DPI means the pixel counts are concrete device
// pixels.
type PageSize struct {
	W   int
	H   int
	DPI float64
}

// Source is a document to be printed: a raster image, a vector document
// rasterized by an external interpreter, rendered text or a barcode.
type Source interface {
	// Open acquires the underlying resource. PageCount, PageSize and
	// RenderPage may only be called between Open and Close.
	Open() error
	Close() error

	// PageCount returns the number of pages.
	PageCount() int

	// PageSize returns the native size of page i.
	PageSize(i int) (PageSize, error)

	// RenderPage rasterizes page i to exactly size.W x size.H pixels.
	RenderPage(i int, size PageSize) (image.Image, error)
}
