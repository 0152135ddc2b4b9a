package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/textnorm"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByTitle SortOrder = "titre"
	SortByVenue SortOrder = "lieu"
)

// ParseSortOrder validates a --sort value.
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case "", SortByDate:
		return SortByDate, nil
	case SortByTitle, "title":
		return SortByTitle, nil
	case SortByVenue, "venue":
		return SortByVenue, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'date', 'titre' or 'lieu')", s)
	}
}

// sortEvents reorders events in place. Events arrive sorted by date, so the
// stable sorts keep date order among equal titles or venues.
func sortEvents(events []*event.Event, order SortOrder) {
	switch order {
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			return textnorm.Fold(events[i].Title) < textnorm.Fold(events[j].Title)
		})
	case SortByVenue:
		sort.SliceStable(events, func(i, j int) bool {
			vi, vj := textnorm.Fold(events[i].Venue), textnorm.Fold(events[j].Venue)
			// events without a venue go last
			if (vi == "") != (vj == "") {
				return vj == ""
			}
			return vi < vj
		})
	}
}
