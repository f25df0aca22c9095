package device

// Label groups. A family's label list is the concatenation of its group and
// its ancestors' groups, mirroring the media compatibility of the hardware
// generations.

var labelsQL = []Label{
	// Continuous
	{
		Identifiers:   []string{"12", "DK-22214"},
		TapeSizeMM:    Size{12, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{142, 0},
		DotsPrintable: Size{106, 0},
		OffsetR:       29,
		FeedMargin:    35,
	},
	{
		Identifiers:   []string{"18"},
		TapeSizeMM:    Size{18, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{256, 0},
		DotsPrintable: Size{234, 0},
		OffsetR:       171,
		FeedMargin:    14,
	},
	{
		Identifiers:   []string{"29", "DK-22210"},
		TapeSizeMM:    Size{29, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{342, 0},
		DotsPrintable: Size{306, 0},
		OffsetR:       6,
		FeedMargin:    35,
	},
	{
		Identifiers:   []string{"38", "DK-22225"},
		TapeSizeMM:    Size{38, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{449, 0},
		DotsPrintable: Size{413, 0},
		OffsetR:       12,
		FeedMargin:    35,
	},
	{
		Identifiers:   []string{"50", "DK-22223"},
		TapeSizeMM:    Size{50, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{590, 0},
		DotsPrintable: Size{554, 0},
		OffsetR:       12,
		FeedMargin:    35,
	},
	{
		Identifiers:   []string{"54", "DK-N55224"},
		TapeSizeMM:    Size{54, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{636, 0},
		DotsPrintable: Size{590, 0},
		OffsetR:       0,
		FeedMargin:    35,
	},
	{
		Identifiers:   []string{"62", "DK-22205", "DK-44205", "DK-44605"},
		TapeSizeMM:    Size{62, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{732, 0},
		DotsPrintable: Size{696, 0},
		OffsetR:       12,
		FeedMargin:    35,
	},
	{
		Identifiers:   []string{"62red", "DK-22251"},
		TapeSizeMM:    Size{62, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{732, 0},
		DotsPrintable: Size{696, 0},
		OffsetR:       12,
		FeedMargin:    35,
		Color:         BlackRedWhite,
	},
	// Die-cut
	{
		Identifiers:   []string{"17x54", "DK-11204"},
		TapeSizeMM:    Size{17, 54},
		FormFactor:    DieCut,
		DotsTotal:     Size{201, 636},
		DotsPrintable: Size{165, 566},
		OffsetR:       0,
	},
	{
		Identifiers:   []string{"17x87", "DK-11203"},
		TapeSizeMM:    Size{17, 87},
		FormFactor:    DieCut,
		DotsTotal:     Size{201, 1026},
		DotsPrintable: Size{165, 956},
		OffsetR:       0,
	},
	{
		Identifiers:   []string{"23x23", "DK-11221"},
		TapeSizeMM:    Size{23, 23},
		FormFactor:    DieCut,
		DotsTotal:     Size{272, 272},
		DotsPrintable: Size{202, 202},
		OffsetR:       42,
	},
	{
		Identifiers:   []string{"29x42"},
		TapeSizeMM:    Size{29, 42},
		FormFactor:    DieCut,
		DotsTotal:     Size{342, 495},
		DotsPrintable: Size{306, 425},
		OffsetR:       6,
	},
	{
		Identifiers:   []string{"29x90", "DK-11201"},
		TapeSizeMM:    Size{29, 90},
		FormFactor:    DieCut,
		DotsTotal:     Size{342, 1061},
		DotsPrintable: Size{306, 991},
		OffsetR:       6,
	},
	{
		Identifiers:   []string{"39x90", "DK-11208"},
		TapeSizeMM:    Size{38, 90},
		FormFactor:    DieCut,
		DotsTotal:     Size{449, 1061},
		DotsPrintable: Size{413, 991},
		OffsetR:       12,
	},
	{
		Identifiers:   []string{"39x48"},
		TapeSizeMM:    Size{39, 48},
		FormFactor:    DieCut,
		DotsTotal:     Size{461, 565},
		DotsPrintable: Size{425, 495},
		OffsetR:       6,
	},
	{
		Identifiers:   []string{"52x29"},
		TapeSizeMM:    Size{52, 29},
		FormFactor:    DieCut,
		DotsTotal:     Size{614, 341},
		DotsPrintable: Size{578, 271},
		OffsetR:       0,
	},
	{
		Identifiers:   []string{"54x29"},
		TapeSizeMM:    Size{54, 29},
		FormFactor:    DieCut,
		DotsTotal:     Size{630, 341},
		DotsPrintable: Size{598, 271},
		OffsetR:       60,
	},
	{
		Identifiers:   []string{"60x86", "DK-11234", "DK-12343PK"},
		TapeSizeMM:    Size{60, 87},
		FormFactor:    DieCut,
		DotsTotal:     Size{708, 1024},
		DotsPrintable: Size{672, 954},
		OffsetR:       18,
	},
	{
		Identifiers:   []string{"62x29", "DK-11209"},
		TapeSizeMM:    Size{62, 29},
		FormFactor:    DieCut,
		DotsTotal:     Size{732, 341},
		DotsPrintable: Size{696, 271},
		OffsetR:       12,
	},
	{
		Identifiers:   []string{"62x100", "DK-11202"},
		TapeSizeMM:    Size{62, 100},
		FormFactor:    DieCut,
		DotsTotal:     Size{732, 1179},
		DotsPrintable: Size{696, 1109},
		OffsetR:       12,
	},
	// Round die-cut
	{
		Identifiers:   []string{"d12", "DK-11219"},
		TapeSizeMM:    Size{12, 12},
		FormFactor:    RoundDieCut,
		DotsTotal:     Size{142, 142},
		DotsPrintable: Size{94, 94},
		OffsetR:       113,
		FeedMargin:    35,
	},
	{
		Identifiers:   []string{"d24", "DK-11218"},
		TapeSizeMM:    Size{24, 24},
		FormFactor:    RoundDieCut,
		DotsTotal:     Size{284, 284},
		DotsPrintable: Size{236, 236},
		OffsetR:       42,
	},
	{
		Identifiers:   []string{"d58", "DK-11207"},
		TapeSizeMM:    Size{58, 58},
		FormFactor:    RoundDieCut,
		DotsTotal:     Size{688, 688},
		DotsPrintable: Size{618, 618},
		OffsetR:       51,
	},
}

var labelsQL10 = []Label{
	// Continuous
	{
		Identifiers:   []string{"102", "DK-22243"},
		TapeSizeMM:    Size{102, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{1200, 0},
		DotsPrintable: Size{1164, 0},
		OffsetR:       12,
		FeedMargin:    35,
	},
	{
		Identifiers:   []string{"104"},
		TapeSizeMM:    Size{104, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{1227, 0},
		DotsPrintable: Size{1200, 0},
		OffsetR:       -8,
		FeedMargin:    35,
	},
	// Die-cut
	{
		Identifiers:   []string{"102x51", "DK-11240"},
		TapeSizeMM:    Size{102, 51},
		FormFactor:    DieCut,
		DotsTotal:     Size{1200, 596},
		DotsPrintable: Size{1164, 526},
		OffsetR:       12,
	},
	{
		Identifiers:   []string{"102x152", "DK-11241"},
		TapeSizeMM:    Size{102, 153},
		FormFactor:    DieCut,
		DotsTotal:     Size{1200, 1804},
		DotsPrintable: Size{1164, 1660},
		OffsetR:       12,
	},
}

var labelsQL11 = []Label{
	// Continuous
	{
		Identifiers:   []string{"103", "DK-22246"},
		TapeSizeMM:    Size{104, 0},
		FormFactor:    Endless,
		DotsTotal:     Size{1224, 0},
		DotsPrintable: Size{1200, 0},
		OffsetR:       12,
		FeedMargin:    35,
	},
	// Die-cut
	{
		Identifiers:   []string{"103x164", "DK-11247"},
		TapeSizeMM:    Size{104, 164},
		FormFactor:    DieCut,
		DotsTotal:     Size{1224, 1941},
		DotsPrintable: Size{1200, 1822},
		OffsetR:       12,
	},
}

var labelsPT = []Label{
	{
		Identifiers:   []string{"12", "pt12"},
		TapeSizeMM:    Size{12, 0},
		FormFactor:    PTouchEndless,
		DotsTotal:     Size{170, 0},
		DotsPrintable: Size{150, 0},
		OffsetR:       213,
		FeedMargin:    14,
	},
	{
		Identifiers:   []string{"18", "pt18"},
		TapeSizeMM:    Size{18, 0},
		FormFactor:    PTouchEndless,
		DotsTotal:     Size{256, 0},
		DotsPrintable: Size{234, 0},
		OffsetR:       171,
		FeedMargin:    14,
	},
	{
		Identifiers:   []string{"24", "pt24"},
		TapeSizeMM:    Size{24, 0},
		FormFactor:    PTouchEndless,
		DotsTotal:     Size{128, 0},
		DotsPrintable: Size{128, 0},
		OffsetR:       0,
		FeedMargin:    14,
	},
	{
		Identifiers:   []string{"36", "pt36"},
		TapeSizeMM:    Size{36, 0},
		FormFactor:    PTouchEndless,
		DotsTotal:     Size{512, 0},
		DotsPrintable: Size{454, 0},
		OffsetR:       61,
		FeedMargin:    14,
	},
}

var labelsPTE = []Label{
	{
		Identifiers:   []string{"6", "pte6"},
		TapeSizeMM:    Size{6, 0},
		FormFactor:    PTouchEndless,
		DotsTotal:     Size{42, 0},
		DotsPrintable: Size{32, 0},
		OffsetR:       48,
		FeedMargin:    14,
	},
	{
		Identifiers:   []string{"9", "pte9"},
		TapeSizeMM:    Size{9, 0},
		FormFactor:    PTouchEndless,
		DotsTotal:     Size{64, 0},
		DotsPrintable: Size{50, 0},
		OffsetR:       39,
		FeedMargin:    14,
	},
	{
		Identifiers:   []string{"12", "pte12"},
		TapeSizeMM:    Size{12, 0},
		FormFactor:    PTouchEndless,
		DotsTotal:     Size{84, 0},
		DotsPrintable: Size{70, 0},
		OffsetR:       29,
		FeedMargin:    14,
	},
	{
		Identifiers:   []string{"18", "pte18"},
		TapeSizeMM:    Size{18, 0},
		FormFactor:    PTouchEndless,
		DotsTotal:     Size{128, 0},
		DotsPrintable: Size{112, 0},
		OffsetR:       8,
		FeedMargin:    14,
	},
	{
		Identifiers:   []string{"24", "pte24"},
		TapeSizeMM:    Size{24, 0},
		FormFactor:    PTouchEndless,
		DotsTotal:     Size{170, 0},
		DotsPrintable: Size{128, 0},
		OffsetR:       0,
		FeedMargin:    14,
	},
}

func labelsForFamily(f Family) []Label {
	var groups [][]Label
	switch f {
	case FamilyQL:
		groups = [][]Label{labelsQL}
	case FamilyQL10:
		groups = [][]Label{labelsQL, labelsQL10}
	case FamilyQL11:
		groups = [][]Label{labelsQL, labelsQL10, labelsQL11}
	case FamilyPT:
		groups = [][]Label{labelsPT}
	case FamilyPTE:
		groups = [][]Label{labelsPTE}
	}

	var out []Label
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

const brotherVendorID = 0x04F9

// ql returns a model with the defaults shared by the QL series.
func ql(name string, family Family, productID uint16, minLen, maxLen int) Model {
	return Model{
		Name:                 name,
		Family:               family,
		USBVendorID:          brotherVendorID,
		USBProductID:         productID,
		MinLengthDots:        minLen,
		MaxLengthDots:        maxLen,
		MinFeedDots:          35,
		MaxFeedDots:          100,
		BytesPerRow:          90,
		SupportsModeSetting:  true,
		SupportsCutting:      true,
		SupportsExpandedMode: true,
		SupportsCompression:  true,
		InvalidateBytes:      200,
	}
}

// Models is the catalog of every supported printer variant.
var Models = func() []Model {
	ms := []Model{}

	m := ql("QL-500", FamilyQL, 0x2015, 295, 11811)
	m.SupportsCompression = false
	m.SupportsModeSetting = false
	m.SupportsExpandedMode = false
	m.SupportsCutting = false
	ms = append(ms, m)

	m = ql("QL-550", FamilyQL, 0x2016, 295, 11811)
	m.SupportsCompression = false
	m.SupportsModeSetting = false
	ms = append(ms, m)

	m = ql("QL-560", FamilyQL, 0x2027, 295, 11811)
	m.SupportsCompression = false
	m.SupportsModeSetting = false
	ms = append(ms, m)

	m = ql("QL-570", FamilyQL, 0x2028, 150, 11811)
	m.SupportsCompression = false
	m.SupportsModeSetting = false
	ms = append(ms, m)

	ms = append(ms, ql("QL-580N", FamilyQL, 0x2029, 150, 11811))
	ms = append(ms, ql("QL-600", FamilyQL, 0x20C0, 150, 11811))
	ms = append(ms, ql("QL-650TD", FamilyQL, 0x201B, 295, 11811))

	m = ql("QL-700", FamilyQL, 0x2042, 150, 11811)
	m.SupportsCompression = false
	m.SupportsModeSetting = false
	ms = append(ms, m)

	ms = append(ms, ql("QL-710W", FamilyQL, 0x2043, 150, 11811))
	ms = append(ms, ql("QL-720NW", FamilyQL, 0x2044, 150, 11811))

	m = ql("QL-800", FamilyQL, 0x209B, 150, 11811)
	m.SupportsTwoColor = true
	m.SupportsCompression = false
	m.InvalidateBytes = 400
	ms = append(ms, m)

	m = ql("QL-810W", FamilyQL, 0x209C, 150, 11811)
	m.SupportsTwoColor = true
	m.InvalidateBytes = 400
	ms = append(ms, m)

	m = ql("QL-820NWB", FamilyQL, 0x209D, 150, 11811)
	m.SupportsTwoColor = true
	m.InvalidateBytes = 400
	ms = append(ms, m)

	// QL 10 series
	wide := func(name string, family Family, productID uint16, minLen, maxLen int) Model {
		m := ql(name, family, productID, minLen, maxLen)
		m.BytesPerRow = 162
		m.AdditionalOffsetR = 44
		return m
	}
	ms = append(ms, wide("QL-1050", FamilyQL10, 0x2020, 295, 35433))
	ms = append(ms, wide("QL-1060N", FamilyQL10, 0x202A, 295, 35433))

	// QL 11 series
	ms = append(ms, wide("QL-1100", FamilyQL11, 0x20A7, 301, 35434))
	ms = append(ms, wide("QL-1100NWB", FamilyQL11, 0x20A8, 301, 35434))
	ms = append(ms, wide("QL-1115NWB", FamilyQL11, 0x20AC, 301, 35434))

	// PT series
	pt := func(name string, family Family, productID uint16, minLen, maxLen, bytesPerRow int) Model {
		m := ql(name, family, productID, minLen, maxLen)
		m.BytesPerRow = bytesPerRow
		return m
	}
	ms = append(ms, pt("PT-P750W", FamilyPT, 0x0000, 31, 14172, 16))
	ms = append(ms, pt("PT-P900W", FamilyPT, 0x0000, 57, 28346, 70))
	ms = append(ms, pt("PT-P950NW", FamilyPT, 0x0000, 57, 28346, 70))

	// PTE series
	ms = append(ms, pt("PT-E550W", FamilyPTE, 0x2060, 31, 14172, 16))

	return ms
}()
