package device

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownID is returned when a model or label identifier does not
// resolve. The message lists the closest known identifiers.
var ErrUnknownID = errors.New("unknown identifier")

// normalize lower-cases the input and strips everything that is not a
// letter or a digit, so "QL-600", "ql600" and "Ql 600" all compare equal.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// levenshtein is the classic two-row edit distance.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// closeMatches returns up to three candidates whose normalized form is
// within editing reach of the needle, nearest first.
func closeMatches(needle string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	// Anything needing more edits than about half the needle is noise.
	limit := (len(needle) + 1) / 2
	if limit < 2 {
		limit = 2
	}

	var out []scored
	seen := map[string]bool{}
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		if d := levenshtein(needle, normalize(c)); d <= limit {
			out = append(out, scored{c, d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].dist < out[j].dist })
	if len(out) > 3 {
		out = out[:3]
	}
	names := make([]string, len(out))
	for i, s := range out {
		names[i] = s.name
	}
	return names
}

func unknownIDError(kind, needle string, candidates []string) error {
	if matches := closeMatches(normalize(needle), candidates); len(matches) > 0 {
		return fmt.Errorf("%w: %s %q, close matches: %s",
			ErrUnknownID, kind, needle, strings.Join(matches, ", "))
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	return fmt.Errorf("%w: %s %q, possible values: %s",
		ErrUnknownID, kind, needle, strings.Join(sorted, ", "))
}

// ModelByName resolves a model by fuzzy name match.
func ModelByName(name string) (*Model, error) {
	needle := normalize(name)
	names := make([]string, 0, len(Models))
	for i := range Models {
		if normalize(Models[i].Name) == needle {
			return &Models[i], nil
		}
		names = append(names, Models[i].Name)
	}
	return nil, unknownIDError("model", name, names)
}

// LabelByID resolves one of the model's labels by fuzzy identifier match.
// Exact normalized matches win over alias order.
func LabelByID(m *Model, id string) (*Label, error) {
	needle := normalize(id)
	labels := m.Labels()
	var ids []string
	for i := range labels {
		for _, alias := range labels[i].Identifiers {
			if normalize(alias) == needle {
				l := labels[i]
				return &l, nil
			}
			ids = append(ids, alias)
		}
	}
	return nil, unknownIDError("label", id, ids)
}

// ModelByProductID resolves a model from a USB vendor/product ID pair, for
// device discovery. It reports false for every pair not in the catalog,
// whether the vendor is known or not; product ID 0 never matches.
func ModelByProductID(vendorID, productID uint16) (*Model, bool) {
	for i := range Models {
		m := &Models[i]
		if m.USBVendorID == vendorID && m.USBProductID == productID && productID != 0 {
			return m, true
		}
	}
	return nil, false
}
