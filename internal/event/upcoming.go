package event

import (
	"sort"
	"time"
)

// Dedup drops events whose Key was already seen, keeping first occurrences in order.
func Dedup(events []*Event) []*Event {
	seen := make(map[string]bool, len(events))
	unique := make([]*Event, 0, len(events))
	for _, evt := range events {
		key := evt.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, evt)
	}
	return unique
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Upcoming resolves every event date in loc, drops unresolvable ones and, unless
// includePast is set, those before today. The result is sorted by date; events on
// the same day keep their relative order.
func Upcoming(events []*Event, now time.Time, loc *time.Location, includePast bool) []*Event {
	type dated struct {
		evt *Event
		day time.Time
	}

	today := StartOfDay(now, loc)
	kept := make([]dated, 0, len(events))
	for _, evt := range events {
		day, err := evt.Date.Resolve(now, loc)
		if err != nil {
			continue
		}
		if !includePast && day.Before(today) {
			continue
		}
		kept = append(kept, dated{evt: evt, day: day})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].day.Before(kept[j].day)
	})

	out := make([]*Event, len(kept))
	for i, d := range kept {
		out[i] = d.evt
	}
	return out
}
