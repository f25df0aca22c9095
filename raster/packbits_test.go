package raster

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBitsKnownVector(t *testing.T) {
	in := []byte{0xAA, 0xAA, 0xAA, 0xBB, 0xCC, 0xDD}
	enc := PackBitsEncode(in)
	assert.Equal(t, []byte{0xFE, 0xAA, 0x02, 0xBB, 0xCC, 0xDD}, enc)

	dec, err := PackBitsDecode(enc)
	require.NoError(t, err)
	assert.Equal(t, in, dec)
}

func TestPackBitsRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x00},
		{0x01, 0x02, 0x03},
		bytes.Repeat([]byte{0x00}, 90),
		bytes.Repeat([]byte{0xFF}, 129),
		bytes.Repeat([]byte{0xAB}, 128),
		append(bytes.Repeat([]byte{0x11}, 200), 0x22, 0x33),
		{0xAA, 0xAA, 0xBB, 0xBB, 0xCC},
	}

	// A long literal crossing the 128-byte span limit.
	var long []byte
	for i := 0; i < 300; i++ {
		long = append(long, byte(i*7+1))
	}
	cases = append(cases, long)

	for i, in := range cases {
		enc := PackBitsEncode(in)
		dec, err := PackBitsDecode(enc)
		require.NoError(t, err, "case %d", i)
		if len(in) == 0 {
			assert.Empty(t, dec, "case %d", i)
		} else {
			assert.Equal(t, in, dec, "case %d", i)
		}
	}
}

func TestPackBitsBlankLineShrinks(t *testing.T) {
	// A blank 90-byte raster line must compress to a single run.
	enc := PackBitsEncode(bytes.Repeat([]byte{0x00}, 90))
	assert.Equal(t, []byte{byte(257 - 90), 0x00}, enc)
}

func TestPackBitsDecodeTruncated(t *testing.T) {
	_, err := PackBitsDecode([]byte{0x05, 0x01})
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = PackBitsDecode([]byte{0xFE})
	assert.ErrorIs(t, err, ErrMalformedInput)
}
