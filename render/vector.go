package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Interpreter rasterizes vector documents. The production implementation
// shells out to Ghostscript; tests substitute a fixture returning canned
// sizes and images.
type Interpreter interface {
	// PageSizesPt lists the MediaBox size of every page in points.
	PageSizesPt(path string) ([]PagePt, error)

	// RasterizePage renders page (0-based) of the document at the given
	// resolution to a grayscale PNG at outPath.
	RasterizePage(path string, page int, dpi float64, outPath string) error
}

// PagePt is a page size in PostScript points.
type PagePt struct {
	W float64
	H float64
}

// Ghostscript runs the gs executable.
type Ghostscript struct {
	// Exe overrides the executable name, default "gs".
	Exe string

	Log *slog.Logger
}

func (g *Ghostscript) exe() string {
	if g.Exe != "" {
		return g.Exe
	}
	return "gs"
}

func (g *Ghostscript) run(args ...string) (string, error) {
	log := g.Log
	if log == nil {
		log = slog.Default()
	}
	log.Debug("running ghostscript", "args", args)

	path, err := exec.LookPath(g.exe())
	if err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrExternalTool, g.exe())
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s %v: %v: %s",
			ErrExternalTool, g.exe(), args, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// listPagesPS prints each page's MediaBox, whitespace-separated, one page
// per line.
const listPagesPS = `FileName (r) file
runpdfbegin
1 1 pdfpagecount {
    pdfgetpage
    /MediaBox get
    {
        =print
        ( ) print
    } forall
    (\n) print
} for
quit`

func (g *Ghostscript) PageSizesPt(path string) ([]PagePt, error) {
	out, err := g.run(
		"-dQUIET", "-dNODISPLAY", "-dNOSAFER",
		"-sFileName="+path,
		"-c", listPagesPS,
	)
	if err != nil {
		return nil, err
	}

	var sizes []PagePt
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: unexpected MediaBox line %q", ErrExternalTool, line)
		}
		box := make([]float64, 4)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad MediaBox value %q", ErrExternalTool, f)
			}
			box[i] = v
		}
		sizes = append(sizes, PagePt{W: box[2] - box[0], H: box[3] - box[1]})
	}
	return sizes, nil
}

func (g *Ghostscript) RasterizePage(path string, page int, dpi float64, outPath string) error {
	_, err := g.run(
		"-o", outPath,
		"-sDEVICE=pnggray",
		fmt.Sprintf("-r%g", dpi),
		fmt.Sprintf("-dFirstPage=%d", page+1),
		fmt.Sprintf("-dLastPage=%d", page+1),
		path,
	)
	return err
}

// VectorSource is a PDF or PostScript document rasterized page by page
// through an Interpreter.
type VectorSource struct {
	Path string

	// Interp defaults to a Ghostscript instance.
	Interp Interpreter

	// DPI is the nominal document resolution, default 300.
	DPI float64

	sizes []PagePt
}

func (s *VectorSource) interp() Interpreter {
	if s.Interp == nil {
		s.Interp = &Ghostscript{}
	}
	return s.Interp
}

func (s *VectorSource) dpi() float64 {
	if s.DPI > 0 {
		return s.DPI
	}
	return 300
}

func (s *VectorSource) Open() error {
	sizes, err := s.interp().PageSizesPt(s.Path)
	if err != nil {
		return fmt.Errorf("listing pages of %s: %w", s.Path, err)
	}
	if len(sizes) == 0 {
		return fmt.Errorf("%w: %s has no pages", ErrExternalTool, s.Path)
	}
	s.sizes = sizes
	return nil
}

func (s *VectorSource) Close() error {
	s.sizes = nil
	return nil
}

func (s *VectorSource) PageCount() int { return len(s.sizes) }

func (s *VectorSource) PageSize(i int) (PageSize, error) {
	if i < 0 || i >= len(s.sizes) {
		return PageSize{}, fmt.Errorf("page %d out of range", i)
	}
	pt := s.sizes[i]
	return PageSize{
		W:   int(pt.W/72*s.dpi() + 0.5),
		H:   int(pt.H/72*s.dpi() + 0.5),
		DPI: s.dpi(),
	}, nil
}

func (s *VectorSource) RenderPage(i int, size PageSize) (image.Image, error) {
	if i < 0 || i >= len(s.sizes) {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	pt := s.sizes[i]

	// Pick the resolution that hits the requested pixel size; the
	// interpreter rounds to whole pixels, so take the smaller of the two
	// axes and pad below.
	dpiW := 72 * float64(size.W) / pt.W
	dpiH := 72 * float64(size.H) / pt.H
	dpi := dpiW
	if dpiH < dpi {
		dpi = dpiH
	}

	tmp, err := os.CreateTemp("", "brotherlabel-vector-*.png")
	if err != nil {
		return nil, fmt.Errorf("vector scratch file: %w", err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := s.interp().RasterizePage(s.Path, i, dpi, tmp.Name()); err != nil {
		return nil, err
	}

	img, err := imaging.Open(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("loading rasterized page: %w", err)
	}

	// The interpreter's output can be a pixel off the requested size;
	// compose it onto an exact-size white canvas.
	canvas := imaging.New(size.W, size.H, color.White)
	return imaging.Paste(canvas, img, image.Pt(0, 0)), nil
}
