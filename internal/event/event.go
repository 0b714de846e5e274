package event

const (
	// ContactVenue is the sentinel start time used when a rule's raw time
	// text cannot be parsed.
	ContactVenue = "Contact Venue"

	// NewTruckNote flags a truck name that matched nothing in the canonical
	// registry. Flagged rows are kept for human review, never dropped.
	NewTruckNote = "[NEW TRUCK]"
)

// CandidateEvent is an event as produced by extraction, before name
// resolution and deduplication. JSON tags match the extraction payload,
// which uses the Events sheet column headers.
type CandidateEvent struct {
	DateStart string `json:"DateStart"`
	TimeStart string `json:"TimeStart"`
	TimeEnd   string `json:"TimeEnd"`
	TruckName string `json:"Truck Name"`
	VenueName string `json:"Venue Name"`
	Notes     string `json:"Notes"`
}

// ResolvedEvent is a candidate event after name resolution: truck and venue
// carry canonical forms when matched, and Notes may carry the new-truck flag.
type ResolvedEvent struct {
	DateStart string
	TimeStart string
	TimeEnd   string
	TruckName string
	VenueName string
	Notes     string
}

// Row returns the six-column row appended to the Events sheet:
// DateStart, TimeStart, TimeEnd, TruckName, VenueName, Notes.
func (e ResolvedEvent) Row() []string {
	return []string{e.DateStart, e.TimeStart, e.TimeEnd, e.TruckName, e.VenueName, e.Notes}
}
