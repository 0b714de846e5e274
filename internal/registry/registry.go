// Package registry holds the canonical truck and venue name lists and
// resolves the loosely spelled names extraction produces against them.
//
// Matching is deliberately coarse: names are normalized (casing, leading
// "The", street abbreviations, punctuation) and two names match when either
// normalized form is a substring of the other. "The Cheese Wagon",
// "cheese wagon" and "Cheese Wagon @ The Green" all resolve to the same
// canonical truck.
package registry

import (
	"regexp"
	"strings"
)

var (
	leadingThe  = regexp.MustCompile(`^the\s+`)
	stWord      = regexp.MustCompile(`\bst\b`)
	rdWord      = regexp.MustCompile(`\brd\b`)
	nonAlphanum = regexp.MustCompile(`[^a-z0-9]`)
)

// Normalize reduces a name to its comparable form: lower-cased, leading
// "the " dropped, "st"/"rd" expanded to "street"/"road", "&" spelled out,
// and everything that is not a letter or digit stripped.
func Normalize(name string) string {
	s := strings.ToLower(name)
	s = leadingThe.ReplaceAllString(s, "")
	s = stWord.ReplaceAllString(s, "street")
	s = rdWord.ReplaceAllString(s, "road")
	s = strings.ReplaceAll(s, "&", "and")
	return nonAlphanum.ReplaceAllString(s, "")
}

// Registry is the canonical set of known truck and venue names, loaded once
// at run start and read-only for the rest of the run.
type Registry struct {
	Trucks []string
	Venues []string
}

// FromRows builds a Registry from the Trucks and Venues sheet rows. The
// name lives in the first column; blank rows are skipped.
func FromRows(truckRows, venueRows [][]string) *Registry {
	return &Registry{
		Trucks: firstColumn(truckRows),
		Venues: firstColumn(venueRows),
	}
}

func firstColumn(rows [][]string) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 && row[0] != "" {
			names = append(names, row[0])
		}
	}
	return names
}

// mutualSubstring reports whether either normalized name contains the
// other. Empty names match nothing; every string contains "".
func mutualSubstring(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ResolveTruck maps a raw truck name to its canonical form. When the
// registry has no match, a raw name that textually contains the source's
// normalized name adopts the source name. Anything else is kept verbatim
// and newTruck is true so the caller can flag the row for review.
func (r *Registry) ResolveTruck(raw, sourceName string) (name string, newTruck bool) {
	norm := Normalize(raw)
	for _, t := range r.Trucks {
		if mutualSubstring(Normalize(t), norm) {
			return t, false
		}
	}
	if strings.Contains(strings.ToLower(raw), Normalize(sourceName)) {
		return sourceName, false
	}
	return raw, true
}

// ResolveVenue maps a raw venue name to its canonical form, falling back to
// the raw text, then to "Unknown" when the raw text is empty. Venues never
// adopt the source name.
func (r *Registry) ResolveVenue(raw string) string {
	norm := Normalize(raw)
	for _, v := range r.Venues {
		if mutualSubstring(Normalize(v), norm) {
			return v
		}
	}
	if raw != "" {
		return raw
	}
	return "Unknown"
}
