// Package brotherlabel is a user-space driver for Brother QL and PT
// series thermal label printers. It renders documents to label bitmaps,
// encodes them into the printers' raster command stream, reads such
// streams back for preview, and delivers them over USB, TCP, the Linux
// usblp device, or plain files.
package brotherlabel

import (
	"go.afab.re/brotherlabel/backend"
	"go.afab.re/brotherlabel/device"
	"go.afab.re/brotherlabel/raster"
	"go.afab.re/brotherlabel/render"
)

// The error kinds of the driver, re-exported so callers can match them
// with errors.Is without importing every subpackage.
var (
	// ErrUnknownID: a model, label, backend or device name did not
	// resolve; the message lists close matches.
	ErrUnknownID = device.ErrUnknownID

	// ErrUnsupportedCommand: an opcode gated out by the model's
	// capability flags. Recoverable; nothing was emitted.
	ErrUnsupportedCommand = raster.ErrUnsupportedCommand

	// ErrUnsupportedModel: USB enumeration matched the vendor but not a
	// known product.
	ErrUnsupportedModel = backend.ErrUnsupportedModel

	// ErrRaster: dimensional mismatch between an image and the model's
	// raster geometry.
	ErrRaster = raster.ErrRaster

	// ErrMalformedInput: the reader hit an unknown opcode or truncated
	// payload.
	ErrMalformedInput = raster.ErrMalformedInput

	// ErrTransport: underlying device I/O failed.
	ErrTransport = backend.ErrTransport

	// ErrExternalTool: the vector interpreter or font matcher subprocess
	// failed or is missing.
	ErrExternalTool = render.ErrExternalTool
)
