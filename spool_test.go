package brotherlabel

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.afab.re/brotherlabel/device"
	"go.afab.re/brotherlabel/render"
)

func testSpool(t *testing.T, modelName, labelID string) *Spool {
	t.Helper()
	m, err := device.ModelByName(modelName)
	require.NoError(t, err)
	l, err := device.LabelByID(m, labelID)
	require.NoError(t, err)

	s, err := NewSpool(m, l, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func whiteBitmap(w, h int) *render.BitmapSource {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return &render.BitmapSource{Image: img}
}

func spoolBytes(t *testing.T, s *Spool) []byte {
	t.Helper()
	data, err := os.ReadFile(s.file.Name())
	require.NoError(t, err)
	return data
}

// The QL-600/62mm endless scenario: a white 696x300 bitmap, no cut,
// compression on.
func TestSpoolEndToEnd(t *testing.T) {
	s := testSpool(t, "QL-600", "62")
	s.AutoCut = false

	require.NoError(t, s.Render(whiteBitmap(696, 300), "test"))
	require.NoError(t, s.Finalize())

	data := spoolBytes(t, s)

	// 200 NULs of invalidate, then initialize.
	require.Greater(t, len(data), 202)
	assert.Equal(t, bytes.Repeat([]byte{0x00}, 200), data[:200])
	assert.Equal(t, []byte{0x1B, 0x40}, data[200:202])

	// A status request is emitted.
	assert.GreaterOrEqual(t, bytes.Index(data, []byte{0x1B, 0x69, 0x53}), 0)

	mqIdx := bytes.Index(data, []byte{0x1B, 0x69, 0x7A})
	require.GreaterOrEqual(t, mqIdx, 0)
	mq := data[mqIdx : mqIdx+13]
	assert.Equal(t, byte(0x0A), mq[4], "endless media type")
	assert.Equal(t, byte(62), mq[5], "media width in mm")
	assert.Equal(t, byte(0), mq[6], "endless media length")
	assert.Equal(t, uint32(300), binary.LittleEndian.Uint32(mq[7:11]))

	// No autocut was emitted, the job still completed.
	assert.Equal(t, -1, bytes.Index(data, []byte{0x1B, 0x69, 0x4D}))

	// Compression is on, the stream ends with the terminating print.
	assert.GreaterOrEqual(t, bytes.Index(data, []byte{0x4D, 0x02}), 0)
	assert.Equal(t, byte(0x1B), data[len(data)-1])
}

// Preview reconstructs exactly one PNG with the device pixel dimensions.
func TestSpoolPreview(t *testing.T) {
	s := testSpool(t, "QL-600", "62")
	s.AutoCut = false

	require.NoError(t, s.Render(whiteBitmap(696, 300), "white label"))
	require.NoError(t, s.Finalize())

	metas, err := s.Preview()
	require.NoError(t, err)
	require.Len(t, metas, 1)

	assert.Equal(t, "white label", metas[0].Name)
	assert.Equal(t, 62.0, metas[0].LabelWidthMM)
	assert.InDelta(t, 300*25.4/300.0, metas[0].LabelHeightMM, 0.01)

	f, err := os.Open(metas[0].ImagePath)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 720, cfg.Width, "bytes-per-row 90 gives 720 pixels")
	assert.Equal(t, 300, cfg.Height)
}

// Cutting on a QL-500 is refused but the job completes without it.
func TestSpoolUnsupportedCutRecovers(t *testing.T) {
	s := testSpool(t, "QL-500", "62")
	// AutoCut stays on; the QL-500 cannot cut.

	require.NoError(t, s.Render(whiteBitmap(696, 300), "test"))
	require.NoError(t, s.Finalize())

	data := spoolBytes(t, s)
	assert.Equal(t, -1, bytes.Index(data, []byte{0x1B, 0x69, 0x4D}),
		"no autocut opcode on a model without cutting")
	assert.Equal(t, byte(0x1B), data[len(data)-1])
}

func TestSpoolMultiplePages(t *testing.T) {
	s := testSpool(t, "QL-600", "62")
	s.AutoCut = false

	require.NoError(t, s.Render(whiteBitmap(696, 300), "one"))
	require.NoError(t, s.Render(whiteBitmap(696, 300), "two"))
	require.NoError(t, s.Finalize())

	data := spoolBytes(t, s)
	assert.Equal(t, 1, bytes.Count(data, []byte{0x1A}), "one intermediate print")
	assert.Equal(t, byte(0x1B), data[len(data)-1], "one terminating print")

	metas, err := s.Preview()
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestSpoolRefusesPastFinalization(t *testing.T) {
	s := testSpool(t, "QL-600", "62")
	s.AutoCut = false

	require.NoError(t, s.Render(whiteBitmap(696, 300), "test"))
	require.NoError(t, s.Finalize())

	err := s.Render(whiteBitmap(696, 300), "late")
	assert.Error(t, err)
}

func TestSpoolCloseRemovesState(t *testing.T) {
	s := testSpool(t, "QL-600", "62")
	s.AutoCut = false

	require.NoError(t, s.Render(whiteBitmap(696, 300), "test"))
	require.NoError(t, s.Finalize())

	metas, err := s.Preview()
	require.NoError(t, err)
	spoolName := s.file.Name()

	require.NoError(t, s.Close())
	assert.NoFileExists(t, spoolName)
	assert.NoFileExists(t, metas[0].ImagePath)
}

func TestRenderOptionsTwoColor(t *testing.T) {
	s := testSpool(t, "QL-820NWB", "62red")
	opts := s.RenderOptions()
	assert.Equal(t, render.TwoColorPalette, opts.Palette)

	mono := testSpool(t, "QL-800", "62")
	assert.Equal(t, render.DefaultPalette, mono.RenderOptions().Palette)
}
