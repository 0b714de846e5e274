// Package dedupe suppresses events the store already knows about.
//
// The uniqueness key is (standardized date, truck key, venue key). Time is
// deliberately excluded: a later correction to an event's start time must
// never look like a new event. Name keys here are coarser than the
// registry's normalization because they are applied to whatever text the
// store already holds, canonical or not.
package dedupe

import (
	"regexp"
	"strings"

	"github.com/villagefoodie/foodie-events/internal/event"
)

// Sheet columns a fingerprint is derived from on existing Events rows.
const (
	dateCol  = 0
	truckCol = 3
	venueCol = 4
)

var nonAlphanum = regexp.MustCompile(`[^a-z0-9]`)

// Key builds the fingerprint "date|truck|venue" for an event. The date is
// zero-padded and the names are lower-cased with everything but letters and
// digits stripped.
func Key(date, truck, venue string) string {
	return event.StandardizeDate(date) + "|" + nameKey(truck) + "|" + nameKey(venue)
}

func nameKey(s string) string {
	return nonAlphanum.ReplaceAllString(strings.ToLower(s), "")
}

// Index is the run-wide fingerprint set. It is seeded from the store at run
// start and only ever grows; a fingerprint is never removed during a run.
type Index struct {
	keys map[string]struct{}
}

// NewIndex returns an empty fingerprint index.
func NewIndex() *Index {
	return &Index{keys: make(map[string]struct{})}
}

// Seed inserts a fingerprint for every existing Events row that carries at
// least a date and a truck name. Returns the number of fingerprints held
// after seeding.
func (i *Index) Seed(rows [][]string) int {
	for _, row := range rows {
		date := event.StandardizeDate(cell(row, dateCol))
		truck := nameKey(cell(row, truckCol))
		venue := nameKey(cell(row, venueCol))
		if date == "" || truck == "" {
			continue
		}
		i.keys[date+"|"+truck+"|"+venue] = struct{}{}
	}
	return len(i.keys)
}

// Accept reports whether the event is new. A new event's fingerprint is
// inserted immediately, so a second source reporting the same (date, truck,
// venue) later in the run is classified as a duplicate.
func (i *Index) Accept(date, truck, venue string) bool {
	k := Key(date, truck, venue)
	if _, dup := i.keys[k]; dup {
		return false
	}
	i.keys[k] = struct{}{}
	return true
}

// Len returns the number of fingerprints currently held.
func (i *Index) Len() int {
	return len(i.keys)
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
