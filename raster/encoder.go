// Package raster implements the wire protocol of the QL and PT series:
// encoding print jobs into command streams, reading such streams back
// into page images, and decoding printer status replies.
package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"go.afab.re/brotherlabel/device"
)

var (
	// ErrUnsupportedCommand is returned when an opcode is gated out by
	// the model's capability flags. Nothing is written in that case, so
	// callers may ignore it and continue.
	ErrUnsupportedCommand = errors.New("unsupported command")

	// ErrRaster is returned on dimensional mismatches between an image
	// and the model's raster geometry.
	ErrRaster = errors.New("raster geometry error")
)

// Media describes the loaded media for the media/quality command.
type Media struct {
	// Type is the wire media type: 0x0A endless, 0x0B die-cut,
	// 0x00 P-touch endless.
	Type byte
	// WidthMM and LengthMM are the tape size in millimeters. LengthMM is
	// zero for endless tape.
	WidthMM  int
	LengthMM int
}

// MediaFor derives the wire media description from a catalog label.
func MediaFor(l *device.Label) Media {
	lengthMM := l.TapeSizeMM.L
	if l.IsEndless() {
		lengthMM = 0
	}
	return Media{
		Type:     l.MediaTypeByte(),
		WidthMM:  l.TapeSizeMM.W,
		LengthMM: lengthMM,
	}
}

// Job encodes one print job as an append-only sequence of commands.
// Commands must be added in the order the printer expects: the prolog
// (invalidate, initialize, switch mode), then per page the status
// request, media/quality, optional mode commands, margins, compression,
// raster data and a print opcode. The final page's print opcode is
// emitted by AddPrint(true), after which the job must not be appended to.
type Job struct {
	w     io.Writer
	model *device.Model

	compression bool
	twoColor    bool
	pages       int
	finalized   bool
}

// NewJob returns an encoder writing to w for the given model.
func NewJob(w io.Writer, model *device.Model) *Job {
	return &Job{w: w, model: model}
}

// Model returns the model this job encodes for.
func (j *Job) Model() *device.Model { return j.model }

// Pages returns the number of print opcodes emitted so far.
func (j *Job) Pages() int { return j.pages }

// Finalized reports whether the terminating print opcode was emitted.
func (j *Job) Finalized() bool { return j.finalized }

func (j *Job) write(b []byte) error {
	if j.finalized {
		return fmt.Errorf("job already finalized")
	}
	if _, err := j.w.Write(b); err != nil {
		return fmt.Errorf("raster write: %w", err)
	}
	return nil
}

// gate checks a capability flag and fails without writing when absent.
func (j *Job) gate(op device.Op) error {
	if !j.model.Supports(op) {
		return fmt.Errorf("%w: %v on %s", ErrUnsupportedCommand, op, j.model.Name)
	}
	return nil
}

// AddSwitchMode selects raster mode. Gated on mode-setting support.
func (j *Job) AddSwitchMode() error {
	if err := j.gate(device.OpModeSetting); err != nil {
		return err
	}
	return j.write(append(append([]byte{}, cmdSwitchMode...), 0x01))
}

// AddInvalidate emits the NUL preamble that clears any stale state in the
// printer's command parser.
func (j *Job) AddInvalidate() error {
	n := j.model.InvalidateBytes
	if n <= 0 {
		n = 200
	}
	return j.write(make([]byte, n))
}

// AddInitialize emits the initialize command.
func (j *Job) AddInitialize() error {
	return j.write(cmdInitialize)
}

// AddStatusInformationRequest asks the printer to send a status reply.
func (j *Job) AddStatusInformationRequest() error {
	return j.write(cmdStatusRequest)
}

// AddAutomaticStatusNotification enables or disables unsolicited status
// packets. Enabled is the power-on default, but spelling it out keeps replay streams
// self-contained.
func (j *Job) AddAutomaticStatusNotification(enabled bool) error {
	b := byte(0x00)
	if !enabled {
		b = 0x01
	}
	return j.write(append(append([]byte{}, cmdAutomaticStatus...), b))
}

// AddMediaAndQuality declares the loaded media and the page's raster line
// count. The first-page flag is derived from the number of pages printed
// so far.
func (j *Job) AddMediaAndQuality(m Media, lines int, highQuality bool) error {
	if lines < j.model.MinLengthDots || lines > j.model.MaxLengthDots {
		return fmt.Errorf("%w: %d raster lines outside %d..%d for %s",
			ErrRaster, lines, j.model.MinLengthDots, j.model.MaxLengthDots, j.model.Name)
	}

	flags := byte(piRecover | piKind | piWidth)
	if m.LengthMM > 0 {
		flags |= piLength
	}
	if highQuality {
		flags |= piQuality
	}

	cmd := append(append([]byte{}, cmdMediaQuality...),
		flags, m.Type, byte(m.WidthMM), byte(m.LengthMM))
	cmd = binary.LittleEndian.AppendUint32(cmd, uint32(lines))
	if j.pages == 0 {
		cmd = append(cmd, 0x00)
	} else {
		cmd = append(cmd, 0x01)
	}
	cmd = append(cmd, 0x00)
	return j.write(cmd)
}

// AddAutocut toggles automatic cutting. Gated on cutting support.
func (j *Job) AddAutocut(enabled bool) error {
	if err := j.gate(device.OpCutting); err != nil {
		return err
	}
	b := byte(0x00)
	if enabled {
		b = 0x40
	}
	return j.write(append(append([]byte{}, cmdAutocut...), b))
}

// AddCutEvery cuts after every n labels. Gated on cutting support.
func (j *Job) AddCutEvery(n int) error {
	if err := j.gate(device.OpCutting); err != nil {
		return err
	}
	if n < 1 || n > 255 {
		return fmt.Errorf("%w: cut-every %d outside 1..255", ErrRaster, n)
	}
	return j.write(append(append([]byte{}, cmdCutEvery...), byte(n)))
}

// AddExpandedMode packs the 600 dpi, cut-at-end and two-color bits.
// Gated on expanded-mode support; the two-color bit additionally requires
// two-color support. The 600 dpi bit has no dimensional effect on the
// raster data.
func (j *Job) AddExpandedMode(dpi600, cutAtEnd, twoColor bool) error {
	if err := j.gate(device.OpExpandedMode); err != nil {
		return err
	}
	if twoColor {
		if err := j.gate(device.OpTwoColor); err != nil {
			return err
		}
	}

	var b byte
	if dpi600 {
		b |= emDPI600
	}
	if cutAtEnd {
		b |= emCutAtEnd
	}
	if twoColor {
		b |= emTwoColor
	}
	j.twoColor = twoColor
	return j.write(append(append([]byte{}, cmdExpandedMode...), b))
}

// AddMargins sets the feed amount in dots.
func (j *Job) AddMargins(feedDots int) error {
	if feedDots < 0 || feedDots > 0xFFFF {
		return fmt.Errorf("%w: feed %d outside 0..65535", ErrRaster, feedDots)
	}
	cmd := append([]byte{}, cmdMargins...)
	cmd = binary.LittleEndian.AppendUint16(cmd, uint16(feedDots))
	return j.write(cmd)
}

// AddCompression selects PackBits compression for subsequent raster
// lines. Gated on compression support; models without it always send raw
// lines.
func (j *Job) AddCompression(enabled bool) error {
	if err := j.gate(device.OpCompression); err != nil {
		return err
	}
	b := byte(0x00)
	if enabled {
		b = 0x02
	}
	j.compression = enabled
	return j.write([]byte{opCompression, b})
}

// AddRasterData emits one raster line per image row. The image width must
// equal the model's pins per row; the palette must be ordered white,
// black and optionally red. For two-color jobs the black and red planes
// are interleaved per line; the exact plane order is unverified on
// hardware and deliberately kept in one place here.
func (j *Job) AddRasterData(img image.PalettedImage) error {
	bounds := img.Bounds()
	pins := j.model.PinsPerRow()
	if bounds.Dx() != pins {
		return fmt.Errorf("%w: image is %d pixels wide, %s wants %d",
			ErrRaster, bounds.Dx(), j.model.Name, pins)
	}
	rows := bounds.Dy()
	if rows < j.model.MinLengthDots || rows > j.model.MaxLengthDots {
		return fmt.Errorf("%w: %d rows outside %d..%d for %s",
			ErrRaster, rows, j.model.MinLengthDots, j.model.MaxLengthDots, j.model.Name)
	}

	black := make([]byte, j.model.BytesPerRow)
	red := make([]byte, j.model.BytesPerRow)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for i := range black {
			black[i] = 0
			red[i] = 0
		}
		for x := 0; x < pins; x++ {
			idx := img.ColorIndexAt(bounds.Min.X+x, y)
			bit := byte(1) << (7 - uint(x)%8)
			switch idx {
			case 1:
				black[x/8] |= bit
			case 2:
				red[x/8] |= bit
			}
		}

		if j.twoColor {
			if err := j.writeRasterLine(opRasterTwo, PlaneBlack, black); err != nil {
				return err
			}
			if err := j.writeRasterLine(opRasterTwo, PlaneRed, red); err != nil {
				return err
			}
		} else {
			if err := j.writeRasterLine(opRaster, 0, black); err != nil {
				return err
			}
		}
	}
	return nil
}

func (j *Job) writeRasterLine(op byte, plane byte, line []byte) error {
	payload := line
	if j.compression {
		payload = PackBitsEncode(line)
	}

	cmd := []byte{op}
	if op == opRasterTwo {
		cmd = append(cmd, plane)
	}
	cmd = binary.LittleEndian.AppendUint16(cmd, uint16(len(payload)))
	cmd = append(cmd, payload...)
	return j.write(cmd)
}

// AddPrint emits the print opcode for the current page. The final page
// must be printed with last=true, which feeds the label out and seals
// the job.
func (j *Job) AddPrint(last bool) error {
	op := []byte{opPrintFeed}
	if last {
		op = []byte{opPrintLast}
	}
	if err := j.write(op); err != nil {
		return err
	}
	j.pages++
	if last {
		j.finalized = true
	}
	return nil
}
