// Package source derives the scrape manifest from the Trucks and Venues
// sheet rows. A row yields a source when it declares a reachable URL or
// free-text scheduling instructions long enough to be worth extracting.
package source

import "strings"

// Sheet column indices (zero-based, data rows start at A2).
const (
	truckURLCol = 4
	venueURLCol = 9
	instrCol    = 10
	strategyCol = 11
)

// MinInstructionLen is the length free-text instructions must exceed to
// count as usable.
const MinInstructionLen = 10

// DefaultStrategyKey is used when a row declares no strategy.
const DefaultStrategyKey = "scroll_lazy"

// Source declares how and where to acquire content for one truck or venue.
// Immutable for the run.
type Source struct {
	Name         string
	URL          string
	Strategy     string
	Instructions string
}

// HasInstructions reports whether the source carries usable free-text
// scheduling instructions.
func (s Source) HasInstructions() bool {
	return len(s.Instructions) > MinInstructionLen
}

// FromRows builds the ordered source list. Truck rows contribute a source
// when they have an http URL or usable instructions; venue rows only when
// they have an http URL. Instruction-only sources get "about:blank" so the
// URL field is always populated.
func FromRows(truckRows, venueRows [][]string) []Source {
	var sources []Source

	for _, row := range truckRows {
		url := cell(row, truckURLCol)
		instructions := cell(row, instrCol)
		hasURL := strings.HasPrefix(url, "http")
		if !hasURL && len(instructions) <= MinInstructionLen {
			continue
		}
		if !hasURL {
			url = "about:blank"
		}
		sources = append(sources, Source{
			Name:         cell(row, 0),
			URL:          url,
			Strategy:     strategyKey(row),
			Instructions: instructions,
		})
	}

	for _, row := range venueRows {
		url := cell(row, venueURLCol)
		if !strings.HasPrefix(url, "http") {
			continue
		}
		sources = append(sources, Source{
			Name:         cell(row, 0),
			URL:          url,
			Strategy:     strategyKey(row),
			Instructions: cell(row, instrCol),
		})
	}

	return sources
}

func strategyKey(row []string) string {
	key := strings.ToLower(strings.TrimSpace(cell(row, strategyCol)))
	if key == "" {
		return DefaultStrategyKey
	}
	return key
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
