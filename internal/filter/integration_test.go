package filter_test

import (
	"testing"
	"time"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/filter"
)

// TestIntegration runs the listener workflow: parse a spoken period, then narrow
// the upcoming events down to it.
func TestIntegration(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	now := time.Date(2025, time.September, 10, 9, 0, 0, 0, loc)

	events := []*event.Event{
		event.New("Tablao avec Ana Pérez au Centre Soléa", "", event.Date{Year: 2025, Month: 10, Day: 11}, "20h30"),
		event.New("Stage de sévillanes", "", event.Date{Month: 10, Day: 14}, ""),
		event.New("Tablao de clôture", "", event.Date{Year: 2025, Month: 11, Day: 22}, "21h"),
		event.New("Rumba au Théâtre", "", event.Date{Year: 2025, Month: 10, Day: 18}, ""),
	}

	t.Run("period only", func(t *testing.T) {
		from, to, err := filter.ParseDateRange("octobre", now, loc)
		if err != nil {
			t.Fatalf("ParseDateRange failed: %v", err)
		}
		f := filter.New(now, loc)
		f.DateFrom, f.DateTo = from, to

		if got := f.Apply(events); len(got) != 3 {
			t.Errorf("expected 3 events in October, got %d", len(got))
		}
	})

	t.Run("period, kind and weekend", func(t *testing.T) {
		from, to, err := filter.ParseDateRange("du 1er octobre au 30 novembre", now, loc)
		if err != nil {
			t.Fatalf("ParseDateRange failed: %v", err)
		}
		f := filter.New(now, loc)
		f.DateFrom, f.DateTo = from, to
		f.Kind = event.KindPerformance
		f.WeekendsOnly = true

		got := f.Apply(events)
		if len(got) != 2 {
			t.Fatalf("expected 2 weekend tablaos, got %d", len(got))
		}
		if got[0].Title != "Tablao avec Ana Pérez au Centre Soléa" || got[1].Title != "Tablao de clôture" {
			t.Errorf("unexpected events: %q, %q", got[0].Title, got[1].Title)
		}
	})

	t.Run("venue", func(t *testing.T) {
		f := filter.New(now, loc)
		f.Venues = []string{"theatre"}

		got := f.Apply(events)
		if len(got) != 1 || got[0].Venue != "Théâtre" {
			t.Errorf("expected the Théâtre event, got %v", got)
		}
	})
}
