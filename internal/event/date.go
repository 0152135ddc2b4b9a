package event

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/centresolea/solea-events/internal/textnorm"
)

// ErrInvalidDate is returned when date components do not form a real calendar day.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar day as written on the site. Year is 0 when the text omits it.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// monthNames maps folded month spellings and abbreviations to months.
var monthNames = map[string]time.Month{
	"janvier": time.January, "janv": time.January, "jan": time.January,
	"fevrier": time.February, "fevr": time.February, "fev": time.February,
	"mars": time.March, "mar": time.March,
	"avril": time.April, "avr": time.April,
	"mai": time.May,
	"juin": time.June,
	"juillet": time.July, "juil": time.July,
	"aout": time.August,
	"septembre": time.September, "sept": time.September, "sep": time.September,
	"octobre": time.October, "oct": time.October,
	"novembre": time.November, "nov": time.November,
	"decembre": time.December, "dec": time.December,
}

// accented spellings only needed by the pattern; lookups go through textnorm.Fold
var accentedMonths = []string{"février", "févr", "fév", "août", "décembre", "déc"}

const weekdayAlternation = `lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche|lun|mar|mer|jeu|ven|sam|dim`

var (
	weekdayPrefix = `(?:\b(?:` + weekdayAlternation + `)(?:\.\s*|,?\s+))?`

	numericDatePattern = regexp.MustCompile(`(?i)` + weekdayPrefix +
		`\b(\d{1,2})[/.-](\d{1,2})(?:[/.-](\d{4}|\d{2}))?\b`)

	textDatePattern = regexp.MustCompile(`(?i)` + weekdayPrefix +
		`\b(\d{1,2})(?:er)?\s+(` + monthAlternation() + `)(\.)?(?:\s+(\d{4}))?`)
)

// monthAlternation lists month spellings longest first so "mars" wins over "mar".
func monthAlternation() string {
	names := make([]string, 0, len(monthNames)+len(accentedMonths))
	for name := range monthNames {
		names = append(names, name)
	}
	names = append(names, accentedMonths...)
	sort.Slice(names, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(names[i]), utf8.RuneCountInString(names[j])
		if li != lj {
			return li > lj
		}
		return names[i] < names[j]
	})
	for i, name := range names {
		names[i] = regexp.QuoteMeta(name)
	}
	return strings.Join(names, "|")
}

// LookupMonth resolves a French month name or abbreviation, accented or not,
// with or without a trailing period.
func LookupMonth(name string) (time.Month, bool) {
	m, ok := monthNames[strings.TrimSuffix(textnorm.Fold(strings.TrimSpace(name)), ".")]
	return m, ok
}

// DateMatch is a date found in a block of text together with its byte span.
type DateMatch struct {
	Date  Date
	Start int
	End   int
}

// ParseDate extracts the first date in span. Numeric day/month forms are tried
// before French textual forms; numeric dates are always read day first.
func ParseDate(span string) (Date, bool) {
	if m, ok := firstMatch(numericMatches(span)); ok {
		return m.Date, true
	}
	if m, ok := firstMatch(textMatches(span)); ok {
		return m.Date, true
	}
	return Date{}, false
}

// FindDates returns every date in text in reading order.
// Overlapping candidates keep the one that starts first.
func FindDates(text string) []DateMatch {
	all := append(numericMatches(text), textMatches(text)...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start < all[j].Start })

	out := make([]DateMatch, 0, len(all))
	end := -1
	for _, m := range all {
		if m.Start < end {
			continue
		}
		out = append(out, m)
		end = m.End
	}
	return out
}

// DistinctDates returns the distinct dates of text in first-seen order.
func DistinctDates(text string) []Date {
	seen := make(map[Date]bool)
	var out []Date
	for _, m := range FindDates(text) {
		if !seen[m.Date] {
			seen[m.Date] = true
			out = append(out, m.Date)
		}
	}
	return out
}

func firstMatch(ms []DateMatch) (DateMatch, bool) {
	if len(ms) == 0 {
		return DateMatch{}, false
	}
	return ms[0], true
}

func numericMatches(text string) []DateMatch {
	var out []DateMatch
	for _, idx := range numericDatePattern.FindAllStringSubmatchIndex(text, -1) {
		day, _ := strconv.Atoi(text[idx[2]:idx[3]])
		month, _ := strconv.Atoi(text[idx[4]:idx[5]])
		year := 0
		if idx[6] >= 0 {
			year, _ = strconv.Atoi(text[idx[6]:idx[7]])
			if idx[7]-idx[6] == 2 {
				year += 2000
			}
		}
		d := Date{Year: year, Month: time.Month(month), Day: day}
		if !d.valid() {
			continue
		}
		out = append(out, DateMatch{Date: d, Start: idx[0], End: idx[1]})
	}
	return out
}

func textMatches(text string) []DateMatch {
	var out []DateMatch
	for _, idx := range textDatePattern.FindAllStringSubmatchIndex(text, -1) {
		// an undotted month or a year must not run into a letter or digit ("12 marsupial")
		if r, _ := utf8.DecodeRuneInString(text[idx[1]:]); idx[1] < len(text) && idx[6] < 0 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		month, ok := monthNames[textnorm.Fold(text[idx[4]:idx[5]])]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(text[idx[2]:idx[3]])
		year := 0
		if idx[8] >= 0 {
			year, _ = strconv.Atoi(text[idx[8]:idx[9]])
		}
		d := Date{Year: year, Month: month, Day: day}
		if !d.valid() {
			continue
		}
		out = append(out, DateMatch{Date: d, Start: idx[0], End: idx[1]})
	}
	return out
}

func (d Date) valid() bool {
	return d.Month >= time.January && d.Month <= time.December && d.Day >= 1 && d.Day <= 31
}

// IsZero reports whether d carries no date at all.
func (d Date) IsZero() bool {
	return d.Month == 0 || d.Day == 0
}

// HasYear reports whether the source text gave a year.
func (d Date) HasYear() bool {
	return d.Year != 0
}

// Format renders "DD/MM/YYYY", or "DD/MM" when the year is unknown.
func (d Date) Format() string {
	if d.IsZero() {
		return ""
	}
	if d.HasYear() {
		return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
	}
	return fmt.Sprintf("%02d/%02d", d.Day, int(d.Month))
}

func (d Date) String() string {
	return d.Format()
}

// Resolve turns d into midnight of that day in loc. A missing year becomes the
// current year in loc. Days that do not exist (30/02) yield ErrInvalidDate.
func (d Date) Resolve(now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if d.IsZero() {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidDate)
	}

	year := d.Year
	if year == 0 {
		year = now.In(loc).Year()
	}

	t := time.Date(year, d.Month, d.Day, 0, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != d.Month || t.Day() != d.Day {
		return time.Time{}, fmt.Errorf("%w: %02d/%02d/%04d", ErrInvalidDate, d.Day, int(d.Month), year)
	}
	return t, nil
}

// SameDay compares day and month; years only count when both sides have one.
func (d Date) SameDay(other Date) bool {
	if d.Day != other.Day || d.Month != other.Month {
		return false
	}
	return !d.HasYear() || !other.HasYear() || d.Year == other.Year
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Format()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, ok := ParseDate(string(text))
	if !ok {
		return fmt.Errorf("parsing date %q: no date found", text)
	}
	*d = parsed
	return nil
}
