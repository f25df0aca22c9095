package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
)

var (
	// ErrMalformedInput is returned when the stream contains an unknown
	// opcode or a truncated variable-length payload.
	ErrMalformedInput = errors.New("malformed raster stream")

	// ErrNeedMore is returned by the chunker when the input ends in the
	// middle of a chunk; feeding more bytes resumes parsing.
	ErrNeedMore = errors.New("need more input")
)

// Chunk is one framed command from a raster stream.
type Chunk struct {
	Name string
	// Data is the complete chunk, including the opcode prefix.
	Data []byte
	// Offset is the chunk's position in the stream.
	Offset int
}

// matchOpcode finds the table entry matching the longest prefix of b.
// It returns ErrNeedMore when b could still grow into a longer known
// prefix and eof is false.
func matchOpcode(b []byte, eof bool) (*opcodeEntry, error) {
	var best *opcodeEntry
	partial := false
	for i := range opcodeTable {
		e := &opcodeTable[i]
		if bytes.HasPrefix(b, e.prefix) {
			if best == nil || len(e.prefix) > len(best.prefix) {
				best = e
			}
		} else if len(b) < len(e.prefix) && bytes.HasPrefix(e.prefix, b) {
			partial = true
		}
	}
	if best != nil {
		return best, nil
	}
	if partial && !eof {
		return nil, ErrNeedMore
	}
	return nil, fmt.Errorf("%w: unknown opcode 0x%02X", ErrMalformedInput, b[0])
}

// Chunker frames a raster command stream into logical chunks. It is
// resumable: Feed may be called between Next calls, and Next returns
// ErrNeedMore while a chunk is incomplete. Close marks the end of input.
type Chunker struct {
	buf []byte
	off int
	eof bool
}

// Feed appends stream bytes to the chunker.
func (c *Chunker) Feed(p []byte) {
	c.buf = append(c.buf, p...)
}

// Close marks the end of the input stream.
func (c *Chunker) Close() {
	c.eof = true
}

// Next returns the next chunk. It returns io.EOF once the input is
// exhausted after Close, ErrNeedMore when the current chunk is
// incomplete, and ErrMalformedInput (with the offset in the message) on
// an unknown opcode.
func (c *Chunker) Next() (Chunk, error) {
	rest := c.buf[c.off:]
	if len(rest) == 0 {
		if c.eof {
			return Chunk{}, io.EOF
		}
		return Chunk{}, ErrNeedMore
	}

	// A lone ESC that no longer command claims is the final print
	// opcode. Distinguishing it from the start of an ESC command needs
	// one byte of lookahead.
	if rest[0] == opPrintLast {
		if len(rest) == 1 && !c.eof {
			return Chunk{}, ErrNeedMore
		}
		if len(rest) == 1 || (rest[1] != 0x40 && rest[1] != 0x69) {
			return c.emit("print", 1), nil
		}
	}

	entry, err := matchOpcode(rest, c.eof)
	if err != nil {
		if errors.Is(err, ErrMalformedInput) {
			return Chunk{}, fmt.Errorf("%w at offset %d", err, c.off)
		}
		return Chunk{}, err
	}

	switch entry.kind {
	case lenFixed:
		if len(rest) < entry.length {
			if c.eof {
				return Chunk{}, fmt.Errorf("%w: truncated %s at offset %d",
					ErrMalformedInput, entry.name, c.off)
			}
			return Chunk{}, ErrNeedMore
		}
		return c.emit(entry.name, entry.length), nil

	case lenNulRun:
		n := 0
		for n < len(rest) && rest[n] == 0x00 {
			n++
		}
		// The run may still be growing.
		if n == len(rest) && !c.eof {
			return Chunk{}, ErrNeedMore
		}
		return c.emit(entry.name, n), nil

	case lenRaster, lenRasterPlane:
		head := 3 // opcode + u16le length
		if entry.kind == lenRasterPlane {
			head = 4 // opcode + plane + u16le length
		}
		if len(rest) < head {
			if c.eof {
				return Chunk{}, fmt.Errorf("%w: truncated %s header at offset %d",
					ErrMalformedInput, entry.name, c.off)
			}
			return Chunk{}, ErrNeedMore
		}
		payload := int(binary.LittleEndian.Uint16(rest[head-2 : head]))
		total := head + payload
		if len(rest) < total {
			if c.eof {
				return Chunk{}, fmt.Errorf("%w: truncated %s payload at offset %d",
					ErrMalformedInput, entry.name, c.off)
			}
			return Chunk{}, ErrNeedMore
		}
		return c.emit(entry.name, total), nil
	}

	return Chunk{}, fmt.Errorf("%w at offset %d", ErrMalformedInput, c.off)
}

func (c *Chunker) emit(name string, n int) Chunk {
	ch := Chunk{Name: name, Data: c.buf[c.off : c.off+n], Offset: c.off}
	c.off += n
	return ch
}

// Palette used for reconstructed pages: index 0 white, 1 black, 2 red.
var pagePalette = color.Palette{
	color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
	color.RGBA{0x00, 0x00, 0x00, 0xFF},
	color.RGBA{0xFF, 0x00, 0x00, 0xFF},
}

// Page is one reconstructed label image together with the media
// declaration that produced it.
type Page struct {
	Image *image.Paletted

	MediaType     byte
	MediaWidthMM  int
	MediaLengthMM int
	HighQuality   bool
	Lines         int
	FeedDots      int
}

// Reader reconstructs page images from a raster command stream.
type Reader struct {
	chunker Chunker
	log     *slog.Logger

	compressed bool
	cur        Page
	blackRows  [][]byte
	redRows    [][]byte
	pages      []Page
}

// NewReader returns a Reader consuming the whole of r.
func NewReader(r io.Reader, log *slog.Logger) (*Reader, error) {
	if log == nil {
		log = slog.Default()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading raster stream: %w", err)
	}
	rd := &Reader{log: log}
	rd.chunker.Feed(data)
	rd.chunker.Close()
	return rd, nil
}

// Analyze parses the stream and returns the reconstructed pages in print
// order.
func (r *Reader) Analyze() ([]Page, error) {
	for {
		chunk, err := r.chunker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.apply(chunk); err != nil {
			return nil, err
		}
	}
	return r.pages, nil
}

func (r *Reader) apply(c Chunk) error {
	switch c.Name {
	case "invalidate", "initialize", "switch mode", "automatic status",
		"status request", "autocut", "cut every", "expanded mode":
		// No effect on page reconstruction.

	case "zero raster":
		// A blank line; the canvas background already is one.
		r.blackRows = append(r.blackRows, nil)
		r.redRows = append(r.redRows, nil)

	case "compression":
		r.compressed = c.Data[1] == 0x02

	case "media/quality":
		flags := c.Data[3]
		r.cur.MediaType = c.Data[4]
		r.cur.MediaWidthMM = int(c.Data[5])
		r.cur.MediaLengthMM = int(c.Data[6])
		r.cur.Lines = int(binary.LittleEndian.Uint32(c.Data[7:11]))
		r.cur.HighQuality = flags&piQuality != 0

	case "margins":
		r.cur.FeedDots = int(binary.LittleEndian.Uint16(c.Data[3:5]))

	case "raster":
		line, err := r.decodeLine(c, c.Data[3:])
		if err != nil {
			return err
		}
		r.blackRows = append(r.blackRows, line)
		r.redRows = append(r.redRows, nil)

	case "raster plane":
		line, err := r.decodeLine(c, c.Data[4:])
		if err != nil {
			return err
		}
		switch c.Data[1] {
		case PlaneBlack:
			r.blackRows = append(r.blackRows, line)
			r.redRows = append(r.redRows, nil)
		case PlaneRed:
			if len(r.redRows) == 0 {
				return fmt.Errorf("%w: red plane before black at offset %d",
					ErrMalformedInput, c.Offset)
			}
			r.redRows[len(r.redRows)-1] = line
		default:
			return fmt.Errorf("%w: unknown color plane 0x%02X at offset %d",
				ErrMalformedInput, c.Data[1], c.Offset)
		}

	case "print":
		r.flushPage()
	}
	return nil
}

func (r *Reader) decodeLine(c Chunk, payload []byte) ([]byte, error) {
	if !r.compressed {
		return payload, nil
	}
	line, err := PackBitsDecode(payload)
	if err != nil {
		return nil, fmt.Errorf("raster line at offset %d: %w", c.Offset, err)
	}
	return line, nil
}

// flushPage assembles the accumulated raster lines into an image and
// starts the next page.
func (r *Reader) flushPage() {
	rowBytes := 0
	for _, row := range r.blackRows {
		if len(row) > rowBytes {
			rowBytes = len(row)
		}
	}

	width := rowBytes * 8
	height := len(r.blackRows)
	img := image.NewPaletted(image.Rect(0, 0, width, height), pagePalette)

	for y, row := range r.blackRows {
		setRow(img, y, row, 1)
	}
	for y, row := range r.redRows {
		setRow(img, y, row, 2)
	}

	page := r.cur
	page.Image = img
	r.pages = append(r.pages, page)
	r.log.Debug("reconstructed page",
		"page", len(r.pages), "width", width, "height", height)

	r.blackRows = nil
	r.redRows = nil
	r.cur = Page{}
}

func setRow(img *image.Paletted, y int, row []byte, index uint8) {
	for i, b := range row {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<(7-uint(bit))) != 0 {
				img.SetColorIndex(i*8+bit, y, index)
			}
		}
	}
}

// WritePNGs writes each page to nameFmt, which must contain a single
// integer verb for the page counter, e.g. "spool%04d.png". It returns the
// written filenames in page order.
func WritePNGs(pages []Page, nameFmt string) ([]string, error) {
	var names []string
	for i, page := range pages {
		name := fmt.Sprintf(nameFmt, i)
		f, err := os.Create(name)
		if err != nil {
			return names, fmt.Errorf("preview %s: %w", name, err)
		}
		if err := png.Encode(f, page.Image); err != nil {
			f.Close()
			return names, fmt.Errorf("preview %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return names, fmt.Errorf("preview %s: %w", name, err)
		}
		names = append(names, name)
	}
	return names, nil
}
