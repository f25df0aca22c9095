package raster

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodeTablePrefixFree(t *testing.T) {
	for i := range opcodeTable {
		for j := range opcodeTable {
			if i == j {
				continue
			}
			assert.False(t,
				bytes.HasPrefix(opcodeTable[i].prefix, opcodeTable[j].prefix),
				"%q is a prefix of %q",
				opcodeTable[j].prefix, opcodeTable[i].prefix)
		}
	}
}

func TestMatchOpcode(t *testing.T) {
	e, err := matchOpcode([]byte{0x1B, 0x69, 0x7A, 0x00, 0x01}, true)
	require.NoError(t, err)
	assert.Equal(t, "media/quality", e.name)

	e, err = matchOpcode([]byte{0x4D, 0x02}, true)
	require.NoError(t, err)
	assert.Equal(t, "compression", e.name)

	_, err = matchOpcode([]byte{0xF0}, true)
	assert.ErrorIs(t, err, ErrMalformedInput)

	// An ESC command cut short could still become longer.
	_, err = matchOpcode([]byte{0x1B, 0x69}, false)
	assert.ErrorIs(t, err, ErrNeedMore)
}

func TestChunkerCompleteness(t *testing.T) {
	instructions := [][]byte{
		bytes.Repeat([]byte{0x00}, 16),
		{0x1B, 0x40},
		{0x1B, 0x69, 0x61, 0x01},
		{0x1B, 0x69, 0x21, 0x00},
		{0x1B, 0x69, 0x53},
		{0x1B, 0x69, 0x7A, 0x86, 0x0A, 62, 0, 0x2C, 0x01, 0x00, 0x00, 0x00, 0x00},
		{0x1B, 0x69, 0x64, 0x23, 0x00},
		{0x4D, 0x02},
		{0x67, 0x03, 0x00, 0xAA, 0xBB, 0xCC},
		{0x77, 0x01, 0x02, 0x00, 0xAA, 0xBB},
		{0x5A},
		{0x0C},
		{0x1A},
		{0x1B},
	}
	stream := bytes.Join(instructions, nil)

	var c Chunker
	c.Feed(stream)
	c.Close()

	var chunks [][]byte
	for {
		chunk, err := c.Next()
		if err != nil {
			break
		}
		chunks = append(chunks, chunk.Data)
	}

	assert.Equal(t, instructions, chunks)
	assert.Equal(t, stream, bytes.Join(chunks, nil), "chunks must concatenate to the input")
}

func TestChunkerResumable(t *testing.T) {
	full := []byte{0x67, 0x04, 0x00, 0x01, 0x02, 0x03, 0x04, 0x1A}

	var c Chunker
	c.Feed(full[:5])

	_, err := c.Next()
	assert.ErrorIs(t, err, ErrNeedMore)

	c.Feed(full[5:])
	chunk, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "raster", chunk.Name)
	assert.Equal(t, full[:7], chunk.Data)

	c.Close()
	chunk, err = c.Next()
	require.NoError(t, err)
	assert.Equal(t, "print", chunk.Name)
}

func TestChunkerTrailingESCIsPrint(t *testing.T) {
	var c Chunker
	c.Feed([]byte{0x1B})

	// Not at EOF this could still be an ESC command.
	_, err := c.Next()
	assert.ErrorIs(t, err, ErrNeedMore)

	c.Close()
	chunk, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "print", chunk.Name)
	assert.Equal(t, []byte{0x1B}, chunk.Data)
}

func TestChunkerMalformed(t *testing.T) {
	var c Chunker
	c.Feed([]byte{0x1A, 0xF0})
	c.Close()

	_, err := c.Next()
	require.NoError(t, err)
	_, err = c.Next()
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), "offset 1")
}

// Encoding a page and reading it back must reproduce the image exactly.
func TestRoundTrip(t *testing.T) {
	m := model(t, "QL-600")
	l := label(t, m, "62")

	page := whitePage(m.PinsPerRow(), 300)
	for y := 0; y < 300; y++ {
		for x := 0; x < m.PinsPerRow(); x += 3 {
			page.SetColorIndex((x+y)%m.PinsPerRow(), y, 1)
		}
	}

	for _, compress := range []bool{false, true} {
		data := encodeJob(t, m, l, page, false, compress)

		rd, err := NewReader(bytes.NewReader(data), nil)
		require.NoError(t, err)
		pages, err := rd.Analyze()
		require.NoError(t, err)
		require.Len(t, pages, 1)

		got := pages[0]
		assert.Equal(t, 720, got.Image.Bounds().Dx())
		assert.Equal(t, 300, got.Image.Bounds().Dy())
		assert.Equal(t, byte(0x0A), got.MediaType)
		assert.Equal(t, 62, got.MediaWidthMM)
		assert.Equal(t, 300, got.Lines)

		for y := 0; y < 300; y++ {
			for x := 0; x < m.PinsPerRow(); x++ {
				require.Equal(t, page.ColorIndexAt(x, y), got.Image.ColorIndexAt(x, y),
					"pixel %d,%d compress=%v", x, y, compress)
			}
		}
	}
}

func TestRoundTripTwoColor(t *testing.T) {
	m := model(t, "QL-820NWB")
	l := label(t, m, "62red")

	page := whitePage(m.PinsPerRow(), m.MinLengthDots)
	for y := 0; y < m.MinLengthDots; y++ {
		page.SetColorIndex(2*y%m.PinsPerRow(), y, 1)
		page.SetColorIndex((2*y+1)%m.PinsPerRow(), y, 2)
	}

	var buf bytes.Buffer
	j := NewJob(&buf, m)
	require.NoError(t, j.AddInvalidate())
	require.NoError(t, j.AddInitialize())
	require.NoError(t, j.AddStatusInformationRequest())
	require.NoError(t, j.AddMediaAndQuality(MediaFor(l), page.Bounds().Dy(), true))
	require.NoError(t, j.AddExpandedMode(false, false, true))
	require.NoError(t, j.AddMargins(l.FeedMargin))
	require.NoError(t, j.AddRasterData(page))
	require.NoError(t, j.AddPrint(true))

	rd, err := NewReader(bytes.NewReader(buf.Bytes()), nil)
	require.NoError(t, err)
	pages, err := rd.Analyze()
	require.NoError(t, err)
	require.Len(t, pages, 1)

	got := pages[0].Image
	for y := 0; y < m.MinLengthDots; y++ {
		for x := 0; x < m.PinsPerRow(); x++ {
			require.Equal(t, page.ColorIndexAt(x, y), got.ColorIndexAt(x, y),
				"pixel %d,%d", x, y)
		}
	}
}

func TestMultiPage(t *testing.T) {
	m := model(t, "QL-600")
	l := label(t, m, "62")

	page := whitePage(m.PinsPerRow(), m.MinLengthDots)

	var buf bytes.Buffer
	j := NewJob(&buf, m)
	require.NoError(t, j.AddInvalidate())
	require.NoError(t, j.AddInitialize())
	for i := 0; i < 3; i++ {
		require.NoError(t, j.AddStatusInformationRequest())
		require.NoError(t, j.AddMediaAndQuality(MediaFor(l), page.Bounds().Dy(), true))
		require.NoError(t, j.AddMargins(l.FeedMargin))
		require.NoError(t, j.AddRasterData(page))
		require.NoError(t, j.AddPrint(i == 2))
	}
	assert.Equal(t, 3, j.Pages())

	rd, err := NewReader(bytes.NewReader(buf.Bytes()), nil)
	require.NoError(t, err)
	pages, err := rd.Analyze()
	require.NoError(t, err)
	assert.Len(t, pages, 3)
}
