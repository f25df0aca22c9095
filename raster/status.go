package raster

import (
	"fmt"
	"strings"
)

// StatusLen is the size of a printer status reply.
const StatusLen = 32

// Fixed offsets within a status reply.
const (
	statusOffsetErrorInfo1 = 8
	statusOffsetErrorInfo2 = 9
	statusOffsetMediaWidth = 10
	statusOffsetMediaType  = 11
	statusOffsetMediaLen   = 17
	statusOffsetStatusType = 18
	statusOffsetPhaseType  = 19
)

// StatusType is the kind of status packet.
type StatusType byte

const (
	StatusReplyToRequest    StatusType = 0x00
	StatusPrintingCompleted StatusType = 0x01
	StatusErrorOccurred     StatusType = 0x02
	StatusTurnedOff         StatusType = 0x04
	StatusNotification      StatusType = 0x05
	StatusPhaseChange       StatusType = 0x06
)

func (t StatusType) String() string {
	switch t {
	case StatusReplyToRequest:
		return "Reply to status request"
	case StatusPrintingCompleted:
		return "Printing completed"
	case StatusErrorOccurred:
		return "Error occurred"
	case StatusTurnedOff:
		return "Turned off"
	case StatusNotification:
		return "Notification"
	case StatusPhaseChange:
		return "Phase change"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", byte(t))
	}
}

// PhaseType is the printer's processing phase.
type PhaseType byte

const (
	PhaseWaitingToReceive PhaseType = 0x00
	PhasePrinting         PhaseType = 0x01
)

func (p PhaseType) String() string {
	switch p {
	case PhaseWaitingToReceive:
		return "Waiting to receive"
	case PhasePrinting:
		return "Printing state"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", byte(p))
	}
}

// Error1 is the first error bitfield.
type Error1 byte

const (
	Err1NoMedia Error1 = 1 << iota
	Err1EndOfMedia
	Err1CutterJam
	Err1WeakBatteries
	Err1PrinterInUse
	Err1PrinterTurnedOff
	Err1HighVoltageAdapter
	Err1FanMotorError
)

func (e Error1) Names() []string {
	return bitfieldNames(byte(e), [8]string{
		"No media when printing", "End of media", "Cutter jam",
		"Weak batteries", "Printer in use", "Printer turned off",
		"High-voltage adapter", "Fan motor error"})
}

// Error2 is the second error bitfield.
type Error2 byte

const (
	Err2ReplaceMedia Error2 = 1 << iota
	Err2ExpansionBufferFull
	Err2CommunicationError
	Err2CommunicationBufferFull
	Err2CoverOpen
	Err2CancelKey
	Err2MediaCannotBeFed
	Err2SystemError
)

func (e Error2) Names() []string {
	return bitfieldNames(byte(e), [8]string{
		"Replace media", "Expansion buffer full", "Communication error",
		"Communication buffer full", "Cover open", "Cancel key",
		"Media cannot be fed", "System error"})
}

func bitfieldNames(b byte, names [8]string) []string {
	var out []string
	for i := uint(0); i < 8; i++ {
		if b&(1<<i) != 0 {
			out = append(out, names[i])
		}
	}
	return out
}

// Status is a decoded 32-byte status reply. Unknown bytes at the type or
// phase positions leave the record usable; they render as Unknown(..).
type Status struct {
	Raw [StatusLen]byte

	Type  StatusType
	Phase PhaseType
	Err1  Error1
	Err2  Error2

	MediaWidthMM  int
	MediaLengthMM int
	MediaType     byte
}

// DecodeStatus parses a status reply. Input shorter than 32 bytes is
// malformed.
func DecodeStatus(b []byte) (Status, error) {
	if len(b) < StatusLen {
		return Status{}, fmt.Errorf("%w: status reply is %d bytes, want %d",
			ErrMalformedInput, len(b), StatusLen)
	}

	var s Status
	copy(s.Raw[:], b)
	s.Type = StatusType(b[statusOffsetStatusType])
	s.Phase = PhaseType(b[statusOffsetPhaseType])
	s.Err1 = Error1(b[statusOffsetErrorInfo1])
	s.Err2 = Error2(b[statusOffsetErrorInfo2])
	s.MediaWidthMM = int(b[statusOffsetMediaWidth])
	s.MediaLengthMM = int(b[statusOffsetMediaLen])
	s.MediaType = b[statusOffsetMediaType]
	return s, nil
}

// Errors returns the names of all set error bits.
func (s *Status) Errors() []string {
	return append(s.Err1.Names(), s.Err2.Names()...)
}

// Err returns an error summarizing the set error bits, or nil.
func (s *Status) Err() error {
	if errs := s.Errors(); len(errs) > 0 {
		return fmt.Errorf("printer error: %s", strings.Join(errs, ", "))
	}
	return nil
}

func (s *Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status: %v, phase: %v", s.Type, s.Phase)
	fmt.Fprintf(&b, ", media: %dmm", s.MediaWidthMM)
	if s.MediaLengthMM != 0 {
		fmt.Fprintf(&b, " x %dmm", s.MediaLengthMM)
	}
	if errs := s.Errors(); len(errs) > 0 {
		fmt.Fprintf(&b, ", errors: %s", strings.Join(errs, ", "))
	}
	return b.String()
}
