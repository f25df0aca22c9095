package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontMatcher resolves a font query to a font file path. The production
// implementation shells out to fc-match.
type FontMatcher func(query string) (string, error)

// FcMatch resolves a fontconfig query using the fc-match executable.
func FcMatch(query string) (string, error) {
	path, err := exec.LookPath("fc-match")
	if err != nil {
		return "", fmt.Errorf("%w: fc-match not found", ErrExternalTool)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, "--format=%{file}", query)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: fc-match %q: %v: %s",
			ErrExternalTool, query, err, strings.TrimSpace(stderr.String()))
	}

	file := strings.TrimSpace(stdout.String())
	if file == "" {
		return "", fmt.Errorf("%w: fc-match found no font for %q", ErrExternalTool, query)
	}
	return file, nil
}

// TextSource renders a text string, centered, as a single page. The
// native page size is the text bounding box at the configured resolution
// plus a margin, but never smaller than MinSize.
type TextSource struct {
	Text string

	// FontData is a parsed-in-memory font, e.g. one of the embedded Go
	// fonts. When empty, FontPath is read; when that is empty too,
	// FontQuery is resolved through Matcher.
	FontData  []byte
	FontPath  string
	FontQuery string
	Matcher   FontMatcher

	// FontSizePt is the font size in points, default 16.
	FontSizePt float64

	// MarginPt is added around the text, default 4.
	MarginPt float64

	// DPI is the resolution the text box is measured at, default 300.
	DPI float64

	// MinSize is the smallest page to produce, in pixels at DPI.
	// Typically the label's printable area.
	MinSize image.Point

	fnt   *opentype.Font
	pageW int
	pageH int
}

func (s *TextSource) sizePt() float64 {
	if s.FontSizePt > 0 {
		return s.FontSizePt
	}
	return 16
}

func (s *TextSource) marginPt() float64 {
	if s.MarginPt > 0 {
		return s.MarginPt
	}
	return 4
}

func (s *TextSource) dpi() float64 {
	if s.DPI > 0 {
		return s.DPI
	}
	return 300
}

func (s *TextSource) lines() []string {
	return strings.Split(strings.ReplaceAll(s.Text, "\r\n", "\n"), "\n")
}

func (s *TextSource) face(dpi float64) (font.Face, error) {
	return opentype.NewFace(s.fnt, &opentype.FaceOptions{
		Size:    s.sizePt(),
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}

// measure returns the text block size in pixels at the given resolution.
// The height is a whole multiple of the face's line height so equal font
// settings give equally tall labels regardless of the text.
func (s *TextSource) measure(dpi float64) (int, int, error) {
	face, err := s.face(dpi)
	if err != nil {
		return 0, 0, fmt.Errorf("sizing font: %w", err)
	}
	defer face.Close()

	width := 0
	for _, line := range s.lines() {
		if w := font.MeasureString(face, line).Ceil(); w > width {
			width = w
		}
	}
	height := face.Metrics().Height.Ceil() * len(s.lines())
	return width, height, nil
}

func (s *TextSource) Open() error {
	data := s.FontData
	if data == nil {
		path := s.FontPath
		if path == "" {
			matcher := s.Matcher
			if matcher == nil {
				matcher = FcMatch
			}
			var err error
			if path, err = matcher(s.FontQuery); err != nil {
				return err
			}
		}
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("reading font %s: %w", path, err)
		}
	}

	fnt, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing font: %w", err)
	}
	s.fnt = fnt

	w, h, err := s.measure(s.dpi())
	if err != nil {
		return err
	}
	margin := int(s.marginPt()/72*s.dpi() + 0.5)
	s.pageW = max(w+margin, s.MinSize.X)
	s.pageH = max(h+margin, s.MinSize.Y)
	return nil
}

func (s *TextSource) Close() error {
	s.fnt = nil
	return nil
}

func (s *TextSource) PageCount() int { return 1 }

func (s *TextSource) PageSize(i int) (PageSize, error) {
	return PageSize{W: s.pageW, H: s.pageH, DPI: s.dpi()}, nil
}

func (s *TextSource) RenderPage(i int, size PageSize) (image.Image, error) {
	dpi := size.DPI
	if dpi <= 0 {
		dpi = s.dpi()
	}
	face, err := s.face(dpi)
	if err != nil {
		return nil, fmt.Errorf("loading font face: %w", err)
	}
	defer face.Close()

	img := image.NewGray(image.Rect(0, 0, size.W, size.H))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
	}

	m := face.Metrics()
	lines := s.lines()
	lineHeight := m.Height
	blockHeight := lineHeight.Mul(fixed.I(len(lines)))

	// Center the text block vertically; each line centers on its own.
	y := fixed.I(size.H/2) - blockHeight/2 + m.Ascent
	for _, line := range lines {
		w := font.MeasureString(face, line)
		d.Dot = fixed.Point26_6{
			X: fixed.I(size.W/2) - w/2,
			Y: y,
		}
		d.DrawString(line)
		y += lineHeight
	}
	return img, nil
}
