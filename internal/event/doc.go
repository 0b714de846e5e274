// Package event provides the core types for Village Foodie calendar events.
//
// The event package defines candidate events as produced by extraction,
// resolved events ready for the Events sheet, and the canonicalization
// helpers shared across the pipeline: date standardization for the
// deduplication fingerprint and raw time-text parsing into HH:MM.
package event
