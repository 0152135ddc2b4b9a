// Package calendar renders extracted events as an iCalendar (RFC 5545) feed.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/centresolea/solea-events/internal/event"
)

// Name is the calendar display name (X-WR-CALNAME).
const Name = "Centre Soléa"

// DefaultDuration is the length given to events with a known start time.
const DefaultDuration = 2 * time.Hour

// uidSpace namespaces the name-based UIDs so the same event keeps its UID across exports.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://isbitelecom.com/evenements"))

// GenerateICS renders events as one VCALENDAR with a VEVENT each. Dates without a
// year resolve against now in loc; events whose date does not exist are skipped.
// Events without a time become all-day entries.
func GenerateICS(events []*event.Event, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Centre Solea//solea-events//FR\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	writeLine(&ics, "X-WR-CALNAME:"+escapeICS(Name))
	writeLine(&ics, "X-WR-TIMEZONE:"+loc.String())

	stamp := formatICSTime(now)
	for _, evt := range events {
		day, err := evt.Date.Resolve(now, loc)
		if err != nil {
			continue
		}
		writeEvent(&ics, evt, day, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, day time.Time, stamp string) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	writeLine(ics, fmt.Sprintf("UID:%s@centresolea", UID(evt)))
	writeLine(ics, "DTSTAMP:"+stamp)

	if hour, minute, ok := clock(evt.Time); ok {
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
		writeLine(ics, "DTSTART:"+formatICSTime(start))
		writeLine(ics, "DTEND:"+formatICSTime(start.Add(DefaultDuration)))
	} else {
		writeLine(ics, "DTSTART;VALUE=DATE:"+day.Format("20060102"))
		writeLine(ics, "DTEND;VALUE=DATE:"+day.AddDate(0, 0, 1).Format("20060102"))
	}

	writeLine(ics, "SUMMARY:"+escapeICS(evt.Title))

	description := evt.Title
	if evt.Actor != "" && evt.Actor != evt.Title {
		description += "\nAvec " + evt.Actor
	}
	writeLine(ics, "DESCRIPTION:"+escapeICS(description))

	if evt.Venue != "" {
		writeLine(ics, "LOCATION:"+escapeICS(evt.Venue))
	}
	if evt.DetailURL != "" {
		writeLine(ics, "URL:"+evt.DetailURL)
	}
	writeLine(ics, "CATEGORIES:"+escapeICS(string(evt.Kind)))
	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// UID derives a stable identifier from the event's identity key.
func UID(evt *event.Event) string {
	return uuid.NewSHA1(uidSpace, []byte(evt.Key())).String()
}

// clock splits a time token ("20h30", "21h") into hour and minute.
func clock(token string) (int, int, bool) {
	h, m, found := strings.Cut(token, "h")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	if m == "" {
		return hour, 0, true
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine folds content lines longer than 75 octets without splitting a rune.
func writeLine(ics *strings.Builder, line string) {
	limit := 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		limit = 74 // the leading space counts
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}
