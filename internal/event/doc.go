// Package event turns fragments of French schedule text into typed events.
//
// It parses dates ("12/10/2025", "sam. 12 oct.") and times ("20h30", "8:05"),
// classifies events as tablao performances or generic events, extracts the
// performer and the venue, and deduplicates, filters and orders the results.
// Everything here is pure: callers supply the text and the reference clock.
package event
