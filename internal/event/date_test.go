package event

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		span     string
		want     Date
		wantMiss bool
	}{
		{name: "numeric full year", span: "12/10/2025", want: Date{2025, time.October, 12}},
		{name: "numeric two digit year", span: "12/10/25", want: Date{2025, time.October, 12}},
		{name: "numeric dashes", span: "12-10-2025", want: Date{2025, time.October, 12}},
		{name: "numeric dots", span: "12.10.2025", want: Date{2025, time.October, 12}},
		{name: "numeric no year", span: "7/9", want: Date{0, time.September, 7}},
		{name: "day before month", span: "02/03/2025", want: Date{2025, time.March, 2}},
		{name: "numeric in prose", span: "Rendez-vous le 05/11 à 19h", want: Date{0, time.November, 5}},
		{name: "weekday and numeric", span: "Sam. 12/10", want: Date{0, time.October, 12}},
		{name: "textual full", span: "12 octobre 2025", want: Date{2025, time.October, 12}},
		{name: "textual weekday", span: "Samedi 12 octobre 2025", want: Date{2025, time.October, 12}},
		{name: "textual abbreviated", span: "sam. 07 sept.", want: Date{0, time.September, 7}},
		{name: "textual first of month", span: "1er mai", want: Date{0, time.May, 1}},
		{name: "textual capitalized accent", span: "Dim 14 DÉC. 2025", want: Date{2025, time.December, 14}},
		{name: "textual then time", span: "12 octobre 20h30", want: Date{0, time.October, 12}},
		{name: "invalid month skipped", span: "12/13", wantMiss: true},
		{name: "invalid day", span: "32/10/2025", wantMiss: true},
		{name: "decimal time is not a date", span: "rendez-vous 20.30", wantMiss: true},
		{name: "month prefix of a word", span: "12 marsupiaux", wantMiss: true},
		{name: "no date", span: "Cours de flamenco", wantMiss: true},
		{name: "empty", span: "", wantMiss: true},
		{name: "numeric wins over textual", span: "12 octobre ou 14/10", want: Date{0, time.October, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.span)
			if tt.wantMiss {
				if ok {
					t.Errorf("ParseDate(%q) = %+v, want no match", tt.span, got)
				}
				return
			}
			if !ok {
				t.Fatalf("ParseDate(%q) found no date", tt.span)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %+v, want %+v", tt.span, got, tt.want)
			}
		})
	}
}

func TestParseDate_RoundTrip(t *testing.T) {
	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day.Year() == 2024 {
		s := day.Format("02/01/2006")
		d, ok := ParseDate(s)
		if !ok {
			t.Fatalf("ParseDate(%q) found no date", s)
		}
		if got := d.Format(); got != s {
			t.Errorf("ParseDate(%q).Format() = %q", s, got)
		}
		day = day.AddDate(0, 0, 1)
	}
}

func TestParseDate_FrenchMonthSpellings(t *testing.T) {
	spellings := map[time.Month][]string{
		time.January:   {"janvier", "Janvier", "janv", "janv.", "jan", "jan."},
		time.February:  {"février", "fevrier", "Février", "févr", "févr.", "fevr.", "fév", "fév.", "fev", "fev."},
		time.March:     {"mars", "Mars", "mar", "mar."},
		time.April:     {"avril", "avr", "avr."},
		time.May:       {"mai", "Mai"},
		time.June:      {"juin"},
		time.July:      {"juillet", "juil", "juil."},
		time.August:    {"août", "aout", "Août"},
		time.September: {"septembre", "sept", "sept.", "sep", "sep."},
		time.October:   {"octobre", "oct", "oct."},
		time.November:  {"novembre", "nov", "nov."},
		time.December:  {"décembre", "decembre", "déc", "déc.", "dec", "dec."},
	}

	for month, names := range spellings {
		numeric := fmt.Sprintf("14/%02d/2026", int(month))
		want, ok := ParseDate(numeric)
		if !ok {
			t.Fatalf("ParseDate(%q) found no date", numeric)
		}
		for _, name := range names {
			span := "14 " + name + " 2026"
			got, ok := ParseDate(span)
			if !ok {
				t.Errorf("ParseDate(%q) found no date", span)
				continue
			}
			if got != want {
				t.Errorf("ParseDate(%q) = %+v, want %+v", span, got, want)
			}
		}
	}
}

func TestFindDates(t *testing.T) {
	text := "Sam 12/10 Tablao, dim 13 octobre stage\nLundi 3 nov. 2025 : reprise"
	got := FindDates(text)

	want := []Date{
		{0, time.October, 12},
		{0, time.October, 13},
		{2025, time.November, 3},
	}
	if len(got) != len(want) {
		t.Fatalf("FindDates() returned %d dates, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Date != want[i] {
			t.Errorf("FindDates()[%d] = %+v, want %+v", i, got[i].Date, want[i])
		}
	}
	if !strings.HasPrefix(text[got[0].Start:got[0].End], "Sam") {
		t.Errorf("first span = %q, should include the weekday", text[got[0].Start:got[0].End])
	}
	if got[1].Start < got[0].End {
		t.Error("spans overlap")
	}
}

func TestDistinctDates(t *testing.T) {
	got := DistinctDates("12/10/2025 puis encore 12/10/2025 et 13 octobre 2025")
	if len(got) != 2 {
		t.Fatalf("DistinctDates() = %+v, want 2 dates", got)
	}
}

func TestDate_Format(t *testing.T) {
	tests := []struct {
		date Date
		want string
	}{
		{Date{2025, time.October, 2}, "02/10/2025"},
		{Date{0, time.September, 7}, "07/09"},
		{Date{}, ""},
	}
	for _, tt := range tests {
		if got := tt.date.Format(); got != tt.want {
			t.Errorf("Format(%+v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestDate_Resolve(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	now := time.Date(2025, time.September, 10, 15, 0, 0, 0, paris)

	t.Run("explicit year", func(t *testing.T) {
		got, err := Date{2026, time.March, 1}.Resolve(now, paris)
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if !got.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, paris)) {
			t.Errorf("Resolve() = %v", got)
		}
	})

	t.Run("missing year uses current year", func(t *testing.T) {
		got, err := Date{0, time.October, 12}.Resolve(now, paris)
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if got.Year() != 2025 {
			t.Errorf("Resolve() year = %d, want 2025", got.Year())
		}
	})

	t.Run("current year is taken in the reference zone", func(t *testing.T) {
		// 23:30 UTC on Dec 31 is already Jan 1 in the reference zone
		lateUTC := time.Date(2025, time.December, 31, 23, 30, 0, 0, time.UTC)
		got, err := Date{0, time.January, 5}.Resolve(lateUTC, paris)
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if got.Year() != 2026 {
			t.Errorf("Resolve() year = %d, want 2026", got.Year())
		}
	})

	t.Run("non-existent day", func(t *testing.T) {
		_, err := Date{2025, time.February, 30}.Resolve(now, paris)
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Resolve() error = %v, want ErrInvalidDate", err)
		}
	})

	t.Run("leap day without year in a common year", func(t *testing.T) {
		_, err := Date{0, time.February, 29}.Resolve(now, paris)
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Resolve() error = %v, want ErrInvalidDate", err)
		}
	})

	t.Run("zero date", func(t *testing.T) {
		if _, err := (Date{}).Resolve(now, paris); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Resolve() error = %v, want ErrInvalidDate", err)
		}
	})
}

func TestDate_SameDay(t *testing.T) {
	tests := []struct {
		name string
		a, b Date
		want bool
	}{
		{"identical", Date{2025, 10, 12}, Date{2025, 10, 12}, true},
		{"one side without year", Date{0, 10, 12}, Date{2025, 10, 12}, true},
		{"different years", Date{2024, 10, 12}, Date{2025, 10, 12}, false},
		{"different day", Date{2025, 10, 12}, Date{2025, 10, 13}, false},
		{"different month", Date{0, 11, 12}, Date{0, 10, 12}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.SameDay(tt.b); got != tt.want {
				t.Errorf("SameDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDate_UnmarshalText(t *testing.T) {
	var d Date
	if err := d.UnmarshalText([]byte("12 oct. 2025")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if d != (Date{2025, time.October, 12}) {
		t.Errorf("UnmarshalText() = %+v", d)
	}
	if err := d.UnmarshalText([]byte("bientôt")); err == nil {
		t.Error("UnmarshalText() expected error for text without a date")
	}
}

func TestLookupMonth(t *testing.T) {
	tests := []struct {
		name string
		want time.Month
		ok   bool
	}{
		{"octobre", time.October, true},
		{"Févr.", time.February, true},
		{" AOÛT ", time.August, true},
		{"dec", time.December, true},
		{"october", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := LookupMonth(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LookupMonth(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
