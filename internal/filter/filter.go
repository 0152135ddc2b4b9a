// Package filter narrows extracted events down to what a listener asked for.
//
// Criteria combine with AND:
//   - Kind (tablao or evenement)
//   - Date range (from/to, inclusive, in the reference time zone)
//   - Weekends only (Saturday/Sunday)
//   - Titles (substring, case and accent insensitive, any of)
//   - Venues (substring, case and accent insensitive, any of)
//
// Example usage:
//
//	f := filter.New(time.Now(), loc)
//	f.DateFrom, f.DateTo, _ = filter.ParseDateRange("du 12 octobre au 3 novembre", time.Now(), loc)
//	f.Venues = []string{"Soléa"}
//	upcoming = f.Apply(upcoming)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/textnorm"
)

// Filter represents event filtering criteria
type Filter struct {
	Kind event.Kind `json:"type,omitempty"`

	// Date range filtering, both ends inclusive
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	Titles []string `json:"titles,omitempty"`
	Venues []string `json:"venues,omitempty"`

	// Now and Location resolve event dates written without a year.
	Now      time.Time      `json:"-"`
	Location *time.Location `json:"-"`
}

// New creates an empty filter that resolves dates against now in loc.
func New(now time.Time, loc *time.Location) *Filter {
	return &Filter{Now: now, Location: loc}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.Kind == "" &&
		f.DateFrom == nil &&
		f.DateTo == nil &&
		!f.WeekendsOnly &&
		len(f.Titles) == 0 &&
		len(f.Venues) == 0)
}

// Matches checks if an event matches all active filter criteria.
// An event whose date cannot be resolved never matches a date criterion.
func (f *Filter) Matches(evt *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if f.Kind != "" && evt.Kind != f.Kind {
		return false
	}

	if f.DateFrom != nil || f.DateTo != nil || f.WeekendsOnly {
		day, err := evt.Date.Resolve(f.now(), f.loc())
		if err != nil {
			return false
		}
		if f.DateFrom != nil && day.Before(event.StartOfDay(*f.DateFrom, f.loc())) {
			return false
		}
		if f.DateTo != nil && day.After(*f.DateTo) {
			return false
		}
		if f.WeekendsOnly {
			if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
				return false
			}
		}
	}

	if len(f.Titles) > 0 && !containsAny(evt.Title, f.Titles) {
		return false
	}
	if len(f.Venues) > 0 && !containsAny(evt.Venue, f.Venues) {
		return false
	}
	return true
}

func containsAny(field string, needles []string) bool {
	folded := textnorm.Fold(field)
	for _, n := range needles {
		if n = textnorm.Fold(strings.TrimSpace(n)); n != "" && strings.Contains(folded, n) {
			return true
		}
	}
	return false
}

// Apply returns the events matching f, in their original order.
// An empty filter returns events unchanged.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// String describes the active criteria in French, e.g.
// "Du 12/10/2025 | Au 20/10/2025 | Lieux : Soléa | Week-ends uniquement".
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "Aucun filtre"
	}

	var parts []string
	if f.Kind != "" {
		parts = append(parts, fmt.Sprintf("Type : %s", f.Kind))
	}
	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("Du %s", f.DateFrom.Format("02/01/2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("Au %s", f.DateTo.Format("02/01/2006")))
	}
	if len(f.Titles) > 0 {
		parts = append(parts, fmt.Sprintf("Titres : %s", strings.Join(f.Titles, ", ")))
	}
	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Lieux : %s", strings.Join(f.Venues, ", ")))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Week-ends uniquement")
	}
	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		Kind:         f.Kind,
		WeekendsOnly: f.WeekendsOnly,
		Now:          f.Now,
		Location:     f.Location,
	}
	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}
	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}
	if len(f.Titles) > 0 {
		clone.Titles = append([]string(nil), f.Titles...)
	}
	if len(f.Venues) > 0 {
		clone.Venues = append([]string(nil), f.Venues...)
	}
	return clone
}

func (f *Filter) now() time.Time {
	if f.Now.IsZero() {
		return time.Now()
	}
	return f.Now
}

func (f *Filter) loc() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}
