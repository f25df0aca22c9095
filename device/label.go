package device

import "fmt"

// FormFactor is the physical shape of a label.
type FormFactor int

const (
	// DieCut labels are pre-sized rectangles.
	DieCut FormFactor = iota + 1
	// Endless labels are continuous tape of fixed width.
	Endless
	// RoundDieCut labels are pre-sized circles.
	RoundDieCut
	// PTouchEndless is continuous P-touch tape.
	PTouchEndless
)

func (f FormFactor) String() string {
	switch f {
	case DieCut:
		return "die-cut"
	case Endless:
		return "endless"
	case RoundDieCut:
		return "round die-cut"
	case PTouchEndless:
		return "P-touch endless"
	default:
		return fmt.Sprintf("FormFactor(%d)", int(f))
	}
}

// Color is the set of colors a label can be printed with.
type Color int

const (
	BlackWhite Color = iota
	BlackRedWhite
)

func (c Color) String() string {
	switch c {
	case BlackWhite:
		return "black/white"
	case BlackRedWhite:
		return "black/red/white"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// Size is a (width, length) pair. Length 0 means endless.
type Size struct {
	W int
	L int
}

// Label describes one media type: its aliases, physical tape size and the
// printable-area geometry in device dots at 300 dpi.
type Label struct {
	// Identifiers are the user-facing aliases, e.g. "62" or "DK-22205".
	// The first entry is the canonical one.
	Identifiers []string

	// TapeSizeMM is the physical size in millimeters.
	TapeSizeMM Size

	FormFactor FormFactor

	// DotsTotal is the total label area in dots.
	DotsTotal Size

	// DotsPrintable is the printable area in dots. Length is 0 for
	// endless forms.
	DotsPrintable Size

	// OffsetR is the right-side offset in dots that centers the printout.
	OffsetR int

	// FeedMargin is additional tape advance in dots when printing.
	FeedMargin int

	Color Color
}

// ID returns the canonical identifier.
func (l *Label) ID() string {
	return l.Identifiers[0]
}

// IsEndless reports whether the label is continuous tape of either kind.
func (l *Label) IsEndless() bool {
	return l.FormFactor == Endless || l.FormFactor == PTouchEndless
}

// Name is a human-readable description, e.g. "62mm x 29mm die-cut".
func (l *Label) Name() string {
	var out string
	switch l.FormFactor {
	case DieCut:
		out = fmt.Sprintf("%dmm x %dmm die-cut", l.TapeSizeMM.W, l.TapeSizeMM.L)
	case RoundDieCut:
		out = fmt.Sprintf("%dmm round die-cut", l.TapeSizeMM.W)
	default:
		out = fmt.Sprintf("%dmm endless", l.TapeSizeMM.W)
	}
	if l.Color == BlackRedWhite {
		out += " (black/red/white)"
	}
	return out
}

// MediaTypeByte is the wire encoding of the form factor in the
// media/quality command.
func (l *Label) MediaTypeByte() byte {
	switch l.FormFactor {
	case DieCut, RoundDieCut:
		return 0x0B
	case Endless:
		return 0x0A
	default: // PTouchEndless
		return 0x00
	}
}
