package brotherlabel

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.afab.re/brotherlabel/backend"
	"go.afab.re/brotherlabel/raster"
)

// IsUnsupported reports whether err is a capability gate failure, the
// one recoverable error kind: nothing was emitted, the caller may
// proceed without the command.
func IsUnsupported(err error) bool {
	return errors.Is(err, raster.ErrUnsupportedCommand)
}

const (
	statusPollTotal = 10 * time.Second
	statusPollSleep = 5 * time.Millisecond
)

// Result describes the outcome of sending a job to a printer.
type Result struct {
	// Sent is set once the instruction bytes were written.
	Sent bool

	// Printed is set when the printer confirmed a completed print.
	// It stays false on backends without read-back.
	Printed bool

	// ReadyForNextJob is set when the printer reported the
	// waiting-to-receive phase after printing.
	ReadyForNextJob bool

	// LastStatus is the most recent decoded status reply, if any.
	LastStatus *raster.Status

	// Errors lists error conditions the printer reported.
	Errors []string
}

// Communicate writes the instruction bytes to an open backend and, when
// blocking on a backend with read-back, polls status replies until the
// print completes, an error is reported, or the poll window elapses.
func Communicate(b backend.Backend, instructions []byte, blocking bool, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}

	res := &Result{}
	start := time.Now()

	log.Info("sending instructions", "bytes", len(instructions))
	if err := b.Write(instructions); err != nil {
		return res, err
	}
	res.Sent = true

	if !blocking || !b.SupportsRead() {
		return res, nil
	}

	for time.Since(start) < statusPollTotal {
		data, err := b.Read(raster.StatusLen)
		if err != nil {
			return res, err
		}
		if len(data) == 0 {
			time.Sleep(statusPollSleep)
			continue
		}

		status, err := raster.DecodeStatus(data)
		if err != nil {
			log.Error("unintelligible printer response",
				"elapsed", time.Since(start), "bytes", fmt.Sprintf("% X", data))
			continue
		}
		res.LastStatus = &status
		log.Debug("printer status", "elapsed", time.Since(start), "status", status.String())

		if errs := status.Errors(); len(errs) > 0 {
			res.Errors = errs
			log.Error("printer reported errors", "errors", errs)
			break
		}
		if status.Type == raster.StatusPrintingCompleted {
			res.Printed = true
		}
		if status.Type == raster.StatusPhaseChange &&
			status.Phase == raster.PhaseWaitingToReceive {
			res.ReadyForNextJob = true
		}
		if res.Printed && res.ReadyForNextJob {
			break
		}
	}

	if !res.Printed {
		log.Warn("printing-completed status not received")
	}
	if !res.ReadyForNextJob {
		log.Warn("waiting-to-receive status not received")
	}
	return res, nil
}
