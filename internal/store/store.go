// Package store reads and appends the spreadsheet-shaped tables behind the
// pipeline: Trucks, Venues, and Events. The production implementation talks
// to the Google Sheets API; a sqlite-backed implementation serves dry runs
// and tests.
package store

import "context"

// Default tab names in the canonical spreadsheet.
const (
	TabEvents = "Events"
	TabTrucks = "Trucks"
	TabVenues = "Venues"
)

// RowStore is the canonical store boundary. Rows are plain string cells;
// header rows are excluded.
type RowStore interface {
	// ReadRows returns every data row of a tab. A missing tab yields no
	// rows, not an error.
	ReadRows(ctx context.Context, tab string) ([][]string, error)

	// AppendRows appends rows to the end of a tab in one write.
	AppendRows(ctx context.Context, tab string, rows [][]string) error
}
