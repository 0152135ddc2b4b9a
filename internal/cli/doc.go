// Package cli implements the command-line interface for solea-events.
//
// The cli package provides the Cobra-based CLI: events lists upcoming events
// (text, JSON or iCalendar), cours, tarifs and adhesion print the course page
// information, and serve runs the HTTP API. Settings come from solea.yaml,
// SOLEA_* environment variables and flags, in increasing precedence.
package cli
