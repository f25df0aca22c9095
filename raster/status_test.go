package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusReply(mutate func(b []byte)) []byte {
	b := make([]byte, StatusLen)
	b[0] = 0x80
	b[1] = 0x20
	b[2] = 0x42
	b[10] = 62 // media width
	mutate(b)
	return b
}

func TestDecodeStatus(t *testing.T) {
	s, err := DecodeStatus(statusReply(func(b []byte) {
		b[17] = 29
		b[18] = 0x01
		b[19] = 0x01
	}))
	require.NoError(t, err)

	assert.Equal(t, StatusPrintingCompleted, s.Type)
	assert.Equal(t, PhasePrinting, s.Phase)
	assert.Equal(t, 62, s.MediaWidthMM)
	assert.Equal(t, 29, s.MediaLengthMM)
	assert.Empty(t, s.Errors())
	assert.NoError(t, s.Err())
}

func TestDecodeStatusErrors(t *testing.T) {
	s, err := DecodeStatus(statusReply(func(b []byte) {
		b[8] = 0x01 | 0x04 // no media, cutter jam
		b[9] = 0x10        // cover open
		b[18] = 0x02
	}))
	require.NoError(t, err)

	assert.Equal(t, StatusErrorOccurred, s.Type)
	assert.Equal(t, []string{
		"No media when printing", "Cutter jam", "Cover open",
	}, s.Errors())
	assert.Error(t, s.Err())
}

// Unknown bytes at the type positions keep the record usable.
func TestDecodeStatusUnknownValues(t *testing.T) {
	s, err := DecodeStatus(statusReply(func(b []byte) {
		b[18] = 0x7F
		b[19] = 0x7F
	}))
	require.NoError(t, err)
	assert.Contains(t, s.Type.String(), "Unknown")
	assert.Contains(t, s.Phase.String(), "Unknown")
	assert.Equal(t, 62, s.MediaWidthMM)
}

func TestDecodeStatusShort(t *testing.T) {
	_, err := DecodeStatus([]byte{0x80, 0x20})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestStatusTypeNames(t *testing.T) {
	assert.Equal(t, "Reply to status request", StatusReplyToRequest.String())
	assert.Equal(t, "Printing completed", StatusPrintingCompleted.String())
	assert.Equal(t, "Error occurred", StatusErrorOccurred.String())
	assert.Equal(t, "Notification", StatusNotification.String())
	assert.Equal(t, "Phase change", StatusPhaseChange.String())
	assert.Equal(t, "Waiting to receive", PhaseWaitingToReceive.String())
	assert.Equal(t, "Printing state", PhasePrinting.String())
}
