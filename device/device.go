// Package device is the static catalog of supported printer models and the
// label media they accept.
package device

import "fmt"

// Family selects the set of labels a model accepts.
type Family int

const (
	FamilyQL Family = iota
	FamilyQL10
	FamilyQL11
	FamilyPT
	FamilyPTE
)

func (f Family) String() string {
	switch f {
	case FamilyQL:
		return "QL"
	case FamilyQL10:
		return "QL10"
	case FamilyQL11:
		return "QL11"
	case FamilyPT:
		return "PT"
	case FamilyPTE:
		return "PTE"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Op is a wire command that is only available on some models.
type Op int

const (
	OpModeSetting Op = iota
	OpCutting
	OpExpandedMode
	OpCompression
	OpTwoColor
)

func (o Op) String() string {
	switch o {
	case OpModeSetting:
		return "mode setting"
	case OpCutting:
		return "cutting"
	case OpExpandedMode:
		return "expanded mode"
	case OpCompression:
		return "compression"
	case OpTwoColor:
		return "two-color printing"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Model describes one printer variant and the opcodes it understands.
// Models are immutable; the catalog hands out copies of the label lists.
type Model struct {
	// Name is the user-facing identifier, e.g. "QL-600".
	Name string

	Family Family

	USBVendorID  uint16
	USBProductID uint16

	// MinLengthDots and MaxLengthDots bound the number of raster lines of
	// a single page.
	MinLengthDots int
	MaxLengthDots int

	// MinFeedDots and MaxFeedDots bound the margins command.
	MinFeedDots int
	MaxFeedDots int

	// BytesPerRow is the fixed wire width of one raster line.
	// Device pixels per row = BytesPerRow * 8.
	BytesPerRow int

	// AdditionalOffsetR is an extra right-side offset in dots required by
	// wide-format models.
	AdditionalOffsetR int

	SupportsModeSetting  bool
	SupportsCutting      bool
	SupportsExpandedMode bool
	SupportsCompression  bool
	SupportsTwoColor     bool

	// InvalidateBytes is the NUL count of the invalidate preamble.
	InvalidateBytes int
}

// Supports reports whether the model implements the given optional opcode.
func (m *Model) Supports(op Op) bool {
	switch op {
	case OpModeSetting:
		return m.SupportsModeSetting
	case OpCutting:
		return m.SupportsCutting
	case OpExpandedMode:
		return m.SupportsExpandedMode
	case OpCompression:
		return m.SupportsCompression
	case OpTwoColor:
		return m.SupportsTwoColor
	default:
		return false
	}
}

// PinsPerRow is the number of device pixels in one raster line.
func (m *Model) PinsPerRow() int {
	return m.BytesPerRow * 8
}

// Labels returns the media supported by this model, in catalog order.
func (m *Model) Labels() []Label {
	return labelsForFamily(m.Family)
}

func (m *Model) String() string {
	return m.Name
}
