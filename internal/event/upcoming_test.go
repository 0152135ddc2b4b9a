package event

import (
	"testing"
	"time"
)

func TestDedup(t *testing.T) {
	evt := &Event{Title: "Tablao", Date: Date{2025, 10, 12}, Time: "20h30", Kind: KindPerformance, Actor: "Tablao"}
	same := *evt
	other := &Event{Title: "Stage", Date: Date{2025, 10, 13}, Kind: KindGeneric}

	got := Dedup([]*Event{evt, other, &same})
	if len(got) != 2 {
		t.Fatalf("Dedup() returned %d events, want 2", len(got))
	}
	if got[0] != evt || got[1] != other {
		t.Error("Dedup() should keep first occurrences in order")
	}
}

func TestUpcoming(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	now := time.Date(2025, time.September, 10, 9, 0, 0, 0, loc)

	newEvents := func() []*Event {
		return []*Event{
			{Title: "apres", Date: Date{2025, time.September, 11}},
			{Title: "avant", Date: Date{2025, time.September, 9}},
			{Title: "aujourdhui", Date: Date{2025, time.September, 10}},
		}
	}

	t.Run("default drops past days", func(t *testing.T) {
		got := Upcoming(newEvents(), now, loc, false)
		assertTitles(t, got, "aujourdhui", "apres")
	})

	t.Run("include past keeps everything in order", func(t *testing.T) {
		got := Upcoming(newEvents(), now, loc, true)
		assertTitles(t, got, "avant", "aujourdhui", "apres")
	})

	t.Run("missing year defaults to current year", func(t *testing.T) {
		got := Upcoming([]*Event{
			{Title: "octobre", Date: Date{0, time.October, 12}},
			{Title: "aout", Date: Date{0, time.August, 1}},
		}, now, loc, false)
		assertTitles(t, got, "octobre")
	})

	t.Run("invalid dates are dropped", func(t *testing.T) {
		got := Upcoming([]*Event{
			{Title: "impossible", Date: Date{2025, time.September, 31}},
			{Title: "ok", Date: Date{2025, time.October, 1}},
		}, now, loc, true)
		assertTitles(t, got, "ok")
	})

	t.Run("same day keeps relative order", func(t *testing.T) {
		got := Upcoming([]*Event{
			{Title: "b", Date: Date{2025, time.October, 1}},
			{Title: "x", Date: Date{2025, time.September, 20}},
			{Title: "a", Date: Date{2025, time.October, 1}},
		}, now, loc, false)
		assertTitles(t, got, "x", "b", "a")
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Upcoming(nil, now, loc, false); len(got) != 0 {
			t.Errorf("Upcoming(nil) = %v, want empty", got)
		}
	})
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := StartOfDay(time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC), loc)
	want := time.Date(2025, 3, 2, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}

func assertTitles(t *testing.T, events []*Event, titles ...string) {
	t.Helper()
	if len(events) != len(titles) {
		got := make([]string, len(events))
		for i, e := range events {
			got[i] = e.Title
		}
		t.Fatalf("got titles %v, want %v", got, titles)
	}
	for i, title := range titles {
		if events[i].Title != title {
			t.Errorf("event[%d].Title = %q, want %q", i, events[i].Title, title)
		}
	}
}
