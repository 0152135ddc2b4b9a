package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/textnorm"
)

// Patterns run on folded, single-line input.
var (
	// "12/10 - 20/10", "du 12/10/2025 au 3/11/2025"
	numericRange = regexp.MustCompile(`^(?:du\s+)?(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\s*(?:-|au|a)\s*(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?$`)

	// "du 12 octobre au 3 novembre", "12 oct. - 3 nov. 2025"
	textRange = regexp.MustCompile(`^(?:du\s+)?(\d{1,2})(?:er)?\s+([a-z]+\.?)(?:\s+(\d{4}))?\s*(?:-|au|a)\s*(\d{1,2})(?:er)?\s+([a-z]+\.?)(?:\s+(\d{4}))?$`)

	// "12-20 octobre", "du 12 au 20 octobre 2025"
	dayRange = regexp.MustCompile(`^(?:du\s+)?(\d{1,2})(?:er)?\s*(?:-|au|a)\s*(\d{1,2})\s+([a-z]+\.?)(?:\s+(\d{4}))?$`)

	// "octobre", "en octobre 2025"
	wholeMonth = regexp.MustCompile(`^(?:en\s+|(?:le\s+)?mois\s+d'\s*)?([a-z]+\.?)(?:\s+(\d{4}))?$`)

	// "le 12 octobre", "12/10"
	singleDay = regexp.MustCompile(`^(?:le\s+)?(\d{1,2}(?:er)?\s+[a-z]+\.?(?:\s+\d{4})?|\d{1,2}/\d{1,2}(?:/\d{2,4})?)$`)
)

const rangeFormats = "'12/10 - 20/10', 'du 12 octobre au 3 novembre', '12-20 octobre', 'octobre', 'ce week-end'"

// ParseDateRange parses a French date range into inclusive bounds in loc.
//
// Supported formats:
//   - "12/10 - 20/10", "du 12/10/2025 au 20/10/2025" - numeric days
//   - "du 12 octobre au 3 novembre", "12 oct. - 3 nov." - different months
//   - "12-20 octobre", "du 12 au 20 octobre" - same month
//   - "octobre", "en octobre 2025" - entire month
//   - "le 12 octobre", "12/10" - single day
//   - "aujourd'hui", "demain", "cette semaine", "ce week-end", "ce mois-ci"
//
// When the year is omitted it is inferred from now:
//   - a month already past this year means next year
//   - otherwise the current year
//   - when the end month precedes the start month, the end is in the next year
//
// The start is at 00:00:00 and the end at 23:59:59.
func ParseDateRange(input string, now time.Time, loc *time.Location) (*time.Time, *time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	folded := textnorm.Fold(textnorm.CollapseLine(input))
	folded = strings.ReplaceAll(folded, "’", "'")
	if folded == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if from, to, ok := relativeRange(folded, now, loc); ok {
		return &from, &to, nil
	}

	// Format 1: numeric days
	if m := numericRange.FindStringSubmatch(folded); m != nil {
		y1, y2 := parseYear(m[3]), parseYear(m[6])
		month1, month2 := atoiMonth(m[2]), atoiMonth(m[5])
		if month1 == 0 || month2 == 0 {
			return nil, nil, fmt.Errorf("invalid month in %q", input)
		}
		return bounds(now, loc, atoi(m[1]), month1, y1, atoi(m[4]), month2, y2)
	}

	// Format 2: textual days in two months
	if m := textRange.FindStringSubmatch(folded); m != nil {
		month1, ok1 := event.LookupMonth(m[2])
		month2, ok2 := event.LookupMonth(m[5])
		if !ok1 || !ok2 {
			return nil, nil, fmt.Errorf("invalid month in %q", input)
		}
		y1, y2 := parseYear(m[3]), parseYear(m[6])
		if y1 == 0 && y2 != 0 {
			y1 = y2
			if month2 < month1 {
				y1--
			}
		}
		return bounds(now, loc, atoi(m[1]), month1, y1, atoi(m[4]), month2, y2)
	}

	// Format 3: day span in one month
	if m := dayRange.FindStringSubmatch(folded); m != nil {
		month, ok := event.LookupMonth(m[3])
		if !ok {
			return nil, nil, fmt.Errorf("invalid month: %s", m[3])
		}
		year := parseYear(m[4])
		return bounds(now, loc, atoi(m[1]), month, year, atoi(m[2]), month, year)
	}

	// Format 4: single day
	if m := singleDay.FindStringSubmatch(folded); m != nil {
		d, ok := event.ParseDate(m[1])
		if !ok {
			return nil, nil, fmt.Errorf("invalid date: %s", m[1])
		}
		return bounds(now, loc, d.Day, d.Month, d.Year, d.Day, d.Month, d.Year)
	}

	// Format 5: whole month
	if m := wholeMonth.FindStringSubmatch(folded); m != nil {
		month, ok := event.LookupMonth(m[1])
		if !ok {
			return nil, nil, fmt.Errorf("invalid date range format. Use %s", rangeFormats)
		}
		year := parseYear(m[2])
		if year == 0 {
			year = yearForMonth(month, now)
		}
		from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		to := time.Date(year, month+1, 0, 23, 59, 59, 0, loc)
		return &from, &to, nil
	}

	return nil, nil, fmt.Errorf("invalid date range format. Use %s", rangeFormats)
}

func relativeRange(folded string, now time.Time, loc *time.Location) (time.Time, time.Time, bool) {
	today := event.StartOfDay(now, loc)
	endOf := func(day time.Time) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc)
	}

	switch folded {
	case "aujourd'hui", "aujourdhui", "ce soir":
		return today, endOf(today), true
	case "demain":
		d := today.AddDate(0, 0, 1)
		return d, endOf(d), true
	case "cette semaine":
		// through Sunday
		offset := (7 - int(today.Weekday())) % 7
		return today, endOf(today.AddDate(0, 0, offset)), true
	case "ce week-end", "ce weekend", "ce week end":
		if today.Weekday() == time.Sunday {
			return today, endOf(today), true
		}
		offset := (int(time.Saturday) - int(today.Weekday()) + 7) % 7
		sat := today.AddDate(0, 0, offset)
		return sat, endOf(sat.AddDate(0, 0, 1)), true
	case "ce mois-ci", "ce mois ci", "ce mois":
		last := time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, loc)
		return today, endOf(last), true
	}
	return time.Time{}, time.Time{}, false
}

// bounds validates both ends and infers missing years.
func bounds(now time.Time, loc *time.Location, day1 int, month1 time.Month, year1 int, day2 int, month2 time.Month, year2 int) (*time.Time, *time.Time, error) {
	if year1 == 0 {
		year1 = yearForMonth(month1, now)
	}
	if year2 == 0 {
		year2 = year1
		if month2 < month1 {
			year2++
		}
	}

	fromDate := event.Date{Year: year1, Month: month1, Day: day1}
	toDate := event.Date{Year: year2, Month: month2, Day: day2}
	from, err := fromDate.Resolve(now, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := toDate.Resolve(now, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end date: %w", err)
	}
	to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, loc)

	if from.After(to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}
	return &from, &to, nil
}

// yearForMonth returns next year for a month already past this year, else this year.
func yearForMonth(month time.Month, now time.Time) int {
	year := now.Year()
	if month < now.Month() {
		year++
	}
	return year
}

func parseYear(s string) int {
	if s == "" {
		return 0
	}
	y, _ := strconv.Atoi(s)
	if len(s) == 2 {
		y += 2000
	}
	return y
}

func atoiMonth(s string) time.Month {
	m := atoi(s)
	if m < 1 || m > 12 {
		return 0
	}
	return time.Month(m)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
