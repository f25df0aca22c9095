package brotherlabel

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"go.afab.re/brotherlabel/backend"
	"go.afab.re/brotherlabel/device"
	"go.afab.re/brotherlabel/raster"
	"go.afab.re/brotherlabel/render"
)

// LabelMetadata describes one spooled label for previewing. The preview
// image lives on disk rather than in memory so large jobs stay cheap.
type LabelMetadata struct {
	Name      string
	ImagePath string

	LabelWidthMM  float64
	LabelHeightMM float64

	MarginWidthMM  float64
	MarginHeightMM float64
}

// Spool accumulates a print job: it renders sources to label bitmaps,
// encodes them into a temporary spool file, and can preview or print the
// result. A Spool must be Closed; Close removes all temporary state.
type Spool struct {
	model *device.Model
	label *device.Label
	log   *slog.Logger

	file *os.File
	job  *raster.Job

	// Options, settable before the first Render call.
	Rotate      int
	AutoRotate  bool
	AutoCut     bool
	HighQuality bool
	Compress    bool
	Dithering   render.Dithering

	prologDone   bool
	pendingPrint bool
	meta         []LabelMetadata
	previewDir   string
}

// NewSpool creates an empty print job for the given model and label.
func NewSpool(model *device.Model, label *device.Label, log *slog.Logger) (*Spool, error) {
	if log == nil {
		log = slog.Default()
	}

	f, err := os.CreateTemp("", "brotherlabel-*.spl")
	if err != nil {
		return nil, fmt.Errorf("creating spool file: %w", err)
	}

	return &Spool{
		model:       model,
		label:       label,
		log:         log,
		file:        f,
		job:         raster.NewJob(f, model),
		AutoRotate:  true,
		AutoCut:     true,
		HighQuality: true,
		Compress:    true,
	}, nil
}

// Model returns the job's printer model.
func (s *Spool) Model() *device.Model { return s.model }

// Label returns the job's media type.
func (s *Spool) Label() *device.Label { return s.label }

// Close discards the spool file and any preview directory.
func (s *Spool) Close() error {
	var err error
	if s.file != nil {
		name := s.file.Name()
		if cerr := s.file.Close(); cerr != nil {
			err = cerr
		}
		os.Remove(name)
		s.file = nil
	}
	if s.previewDir != "" {
		os.RemoveAll(s.previewDir)
		s.previewDir = ""
	}
	return err
}

// twoColor reports whether the job prints the red plane.
func (s *Spool) twoColor() bool {
	return s.label.Color == device.BlackRedWhite && s.model.SupportsTwoColor
}

// RenderOptions derives the geometry and palette for this model/label
// pair.
func (s *Spool) RenderOptions() render.Options {
	palette := render.DefaultPalette
	if s.twoColor() {
		palette = render.TwoColorPalette
	}

	rotate := s.Rotate
	if s.AutoRotate {
		rotate = 0
	}

	return render.Options{
		Rotate:                 rotate,
		AutoRotate:             s.AutoRotate,
		AllowScaleRaster:       true,
		AllowScalePhysicalDims: true,
		PrintablePixels:        image.Pt(s.label.DotsPrintable.W, s.label.DotsPrintable.L),
		DevicePixels:           image.Pt(s.model.PinsPerRow(), s.label.DotsTotal.L),
		DeviceOffset:           image.Pt(s.label.OffsetR+s.model.AdditionalOffsetR, 0),
		Dithering:              s.Dithering,
		Palette:                palette,
	}
}

// prolog emits the job-wide initialization commands once.
func (s *Spool) prolog() error {
	if s.prologDone {
		return nil
	}
	if err := s.job.AddInvalidate(); err != nil {
		return err
	}
	if err := s.job.AddInitialize(); err != nil {
		return err
	}
	if err := s.job.AddSwitchMode(); err != nil && !IsUnsupported(err) {
		return err
	}
	s.prologDone = true
	return nil
}

// Render rasterizes the source and appends every page to the job.
func (s *Spool) Render(src render.Source, name string) error {
	if s.file == nil {
		return fmt.Errorf("spool is closed")
	}
	if s.job.Finalized() {
		return fmt.Errorf("job already finalized")
	}

	r := render.Renderer{Source: src, Options: s.RenderOptions(), Log: s.log}
	pages, err := r.RenderAll()
	if err != nil {
		return err
	}

	for i, page := range pages {
		if err := s.encodePage(page); err != nil {
			return fmt.Errorf("encoding page %d: %w", i+1, err)
		}

		pageName := name
		if len(pages) > 1 {
			pageName = fmt.Sprintf("%s (pg. %d/%d)", name, i+1, len(pages))
		}
		s.meta = append(s.meta, LabelMetadata{
			Name:           pageName,
			LabelWidthMM:   float64(s.label.TapeSizeMM.W),
			LabelHeightMM:  float64(page.Bounds().Dy()) * 25.4 / 300.0,
			MarginWidthMM:  float64(s.label.OffsetR) * 25.4 / 300.0,
			MarginHeightMM: float64(s.label.FeedMargin) * 25.4 / 300.0,
		})
		s.log.Info("spooled label", "name", pageName,
			"lines", page.Bounds().Dy())
	}
	return nil
}

func (s *Spool) encodePage(page *image.Paletted) error {
	if err := s.prolog(); err != nil {
		return err
	}

	// The previous page's print opcode is written only now, so the
	// final page can get the terminating variant.
	if s.pendingPrint {
		if err := s.job.AddPrint(false); err != nil {
			return err
		}
	}
	s.pendingPrint = false

	if err := s.job.AddStatusInformationRequest(); err != nil {
		return err
	}
	if err := s.job.AddMediaAndQuality(
		raster.MediaFor(s.label), page.Bounds().Dy(), s.HighQuality); err != nil {
		return err
	}

	if s.AutoCut {
		if err := s.job.AddAutocut(true); err != nil && !IsUnsupported(err) {
			return err
		} else if err == nil {
			if err := s.job.AddCutEvery(1); err != nil && !IsUnsupported(err) {
				return err
			}
		}
	}

	err := s.job.AddExpandedMode(false, s.AutoCut, s.twoColor())
	if err != nil && !IsUnsupported(err) {
		return err
	}

	if err := s.job.AddMargins(s.label.FeedMargin); err != nil {
		return err
	}

	if s.Compress {
		if err := s.job.AddCompression(true); err != nil && !IsUnsupported(err) {
			return err
		}
	}

	if err := s.job.AddRasterData(page); err != nil {
		return err
	}

	s.pendingPrint = true
	return nil
}

// Finalize emits the terminating print opcode. No more pages can be
// rendered afterwards.
func (s *Spool) Finalize() error {
	if !s.pendingPrint {
		return fmt.Errorf("nothing spooled")
	}
	s.pendingPrint = false
	return s.job.AddPrint(true)
}

// Preview runs the reader over the spooled commands and writes one PNG
// per label into a temporary directory. The returned metadata records
// point at the files; they are valid until Close.
func (s *Spool) Preview() ([]LabelMetadata, error) {
	if !s.job.Finalized() {
		return nil, fmt.Errorf("job not finalized")
	}

	if s.previewDir != "" {
		os.RemoveAll(s.previewDir)
		s.previewDir = ""
	}
	dir, err := os.MkdirTemp("", "brotherlabel-preview-")
	if err != nil {
		return nil, fmt.Errorf("creating preview directory: %w", err)
	}
	s.previewDir = dir

	if _, err := s.file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewinding spool: %w", err)
	}
	defer s.file.Seek(0, 2)

	rd, err := raster.NewReader(s.file, s.log)
	if err != nil {
		return nil, err
	}
	pages, err := rd.Analyze()
	if err != nil {
		return nil, err
	}

	names, err := raster.WritePNGs(pages, filepath.Join(dir, "spool%04d.png"))
	if err != nil {
		return nil, err
	}
	if len(names) != len(s.meta) {
		return nil, fmt.Errorf("spool has %d pages but %d metadata records",
			len(names), len(s.meta))
	}

	out := make([]LabelMetadata, len(names))
	for i, name := range names {
		out[i] = s.meta[i]
		out[i].ImagePath = name
	}
	s.log.Info("wrote preview images", "dir", dir, "count", len(names))
	return out, nil
}

// Print sends the finalized job through the backend and waits for the
// printer to finish. The backend is opened and closed here.
func (s *Spool) Print(b backend.Backend) (*Result, error) {
	if !s.job.Finalized() {
		return nil, fmt.Errorf("job not finalized")
	}

	if _, err := s.file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewinding spool: %w", err)
	}
	defer s.file.Seek(0, 2)

	instructions, err := os.ReadFile(s.file.Name())
	if err != nil {
		return nil, fmt.Errorf("reading spool: %w", err)
	}

	s.log.Info("printing", "device", b.DeviceURL(), "bytes", len(instructions))
	if err := b.Open(); err != nil {
		return nil, err
	}
	defer b.Close()

	return Communicate(b, instructions, true, s.log)
}
